package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const callDeadline = 10 * time.Second

// Dial opens a JSON-RPC connection to the studio daemon command socket.
// Connections are per-call; the daemon serves each codec on its own
// goroutine.
func Dial(ctx context.Context, socketPath string) (*rpc.Client, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial studio daemon: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(callDeadline))
	return rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn)), nil
}

// Envelope is one push notification on the event socket: newline-delimited
// JSON, one envelope per line.
type Envelope struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// Subscribe connects to the daemon event socket and invokes the handler for
// every envelope on the given channel until the context is cancelled or the
// connection drops. Handlers run on the subscriber goroutine, one envelope
// at a time.
func Subscribe(ctx context.Context, socketPath, channel string, handler func(json.RawMessage)) error {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return fmt.Errorf("dial event socket: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var envelope Envelope
		if err := json.Unmarshal(scanner.Bytes(), &envelope); err != nil {
			continue
		}
		if envelope.Channel != channel {
			continue
		}
		handler(envelope.Payload)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event socket: %w", err)
	}
	return nil
}
