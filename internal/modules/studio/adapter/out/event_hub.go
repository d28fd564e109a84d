package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"

	"recstudio/internal/platform/ipc"
)

// EventHub broadcasts daemon push notifications to every connected client
// as newline-delimited JSON envelopes. A client that stops reading is
// dropped on the first failed write.
type EventHub struct {
	logger hclog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func NewEventHub(logger hclog.Logger) *EventHub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &EventHub{
		logger: logger.Named("event-hub"),
		conns:  map[net.Conn]struct{}{},
	}
}

func (h *EventHub) Publish(channel string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("event payload marshal failed", "channel", channel, "error", err)
		return
	}
	line, err := json.Marshal(ipc.Envelope{Channel: channel, Payload: raw})
	if err != nil {
		h.logger.Warn("event envelope marshal failed", "channel", channel, "error", err)
		return
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if _, err := conn.Write(line); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// Serve accepts event subscribers until the context is canceled.
func (h *EventHub) Serve(ctx context.Context, socketPath string) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("create event dir: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale event socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen event socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("chmod event socket: %w", err)
	}
	defer ln.Close()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				h.closeAll()
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			h.closeAll()
			return err
		}
		h.mu.Lock()
		h.conns[conn] = struct{}{}
		h.mu.Unlock()
	}
}

func (h *EventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}
