package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	studioout "recstudio/internal/modules/studio/port/out"
	"recstudio/internal/platform/ipc"
)

const daemonStartTimeout = 5 * time.Second

// DaemonService owns the daemon process lifecycle: running the sockets in
// the foreground, spawning a background daemon, and stopping one.
type DaemonService struct {
	store     studioout.DaemonStore
	ipcServer studioout.IPCServer
	events    studioout.EventServer
	logger    hclog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewDaemonService(store studioout.DaemonStore, ipcServer studioout.IPCServer, events studioout.EventServer, logger hclog.Logger) *DaemonService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DaemonService{store: store, ipcServer: ipcServer, events: events, logger: logger.Named("daemon")}
}

// RequestStop cancels a foreground RunDaemon. Wired as the handler's
// shutdown callback so Studio.Shutdown terminates the process.
func (d *DaemonService) RequestStop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
}

// RunDaemon serves the command and event sockets until the context is
// canceled or a listener fails.
func (d *DaemonService) RunDaemon(ctx context.Context, handler studioout.IPCHandler) error {
	if err := d.cleanupStaleArtifacts(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	if err := d.store.WritePID(runCtx, os.Getpid()); err != nil {
		return err
	}
	d.logger.Info("daemon starting", "pid", os.Getpid(), "socket", d.store.CommandSocketPath())

	serveErr := make(chan error, 2)
	go func() {
		serveErr <- d.events.Serve(runCtx, d.store.EventSocketPath())
	}()
	go func() {
		serveErr <- d.ipcServer.Serve(runCtx, d.store.CommandSocketPath(), handler)
	}()

	var result error
	select {
	case <-runCtx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, context.Canceled) {
			result = err
		}
		cancel()
	}

	d.cleanupRuntime(context.Background())
	d.logger.Info("daemon stopped")
	return result
}

// StartDaemon spawns the daemon in the background and waits for its command
// socket to come up.
func (d *DaemonService) StartDaemon(ctx context.Context) error {
	if err := d.cleanupStaleArtifacts(ctx); err != nil {
		return err
	}
	status := d.Status(ctx)
	if status.Running {
		if socketReachable(d.store.CommandSocketPath()) {
			return nil
		}
		return fmt.Errorf("daemon process %d is alive but its socket is unreachable", status.PID)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.store.LogPath()), 0o755); err != nil {
		return fmt.Errorf("create daemon log dir: %w", err)
	}
	logFile, err := os.OpenFile(d.store.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(execPath, "daemon", "run")
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if err := d.store.WritePID(ctx, cmd.Process.Pid); err != nil {
		return err
	}
	_ = cmd.Process.Release()

	if err := waitForSocket(d.store.CommandSocketPath(), daemonStartTimeout); err != nil {
		_ = d.store.ClearPID(ctx)
		return err
	}
	return nil
}

// StopDaemon asks a running daemon to shut down over IPC, falling back to
// signals when the socket does not answer.
func (d *DaemonService) StopDaemon(ctx context.Context) error {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
		return nil
	}

	if socketReachable(d.store.CommandSocketPath()) {
		if client, err := ipc.Dial(ctx, d.store.CommandSocketPath()); err == nil {
			type emptyArg struct{}
			_ = client.Call("Studio.Shutdown", emptyArg{}, &emptyArg{})
			_ = client.Close()
		}
	}

	pid, err := d.store.ReadPID(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.removeSockets()
			return nil
		}
		return err
	}
	if pid <= 0 || !processAlive(pid) {
		_ = d.store.ClearPID(ctx)
		d.removeSockets()
		return nil
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("stop daemon pid=%d: %w", pid, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if processAlive(pid) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	if err := d.store.ClearPID(ctx); err != nil {
		return err
	}
	d.removeSockets()
	return nil
}

func (d *DaemonService) Status(ctx context.Context) studioout.DaemonRuntimeStatus {
	status := studioout.DaemonRuntimeStatus{
		SocketPath: d.store.CommandSocketPath(),
		EventPath:  d.store.EventSocketPath(),
	}
	if pid, err := d.store.ReadPID(ctx); err == nil {
		status.PID = pid
		status.Running = processAlive(pid)
	}
	return status
}

func (d *DaemonService) cleanupRuntime(ctx context.Context) {
	d.mu.Lock()
	d.cancel = nil
	d.mu.Unlock()
	_ = d.store.ClearPID(ctx)
	d.removeSockets()
}

func (d *DaemonService) cleanupStaleArtifacts(ctx context.Context) error {
	pid, err := d.store.ReadPID(ctx)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	} else if pid > 0 && !processAlive(pid) {
		_ = d.store.ClearPID(ctx)
		d.removeSockets()
	}

	for _, path := range []string{d.store.CommandSocketPath(), d.store.EventSocketPath()} {
		if _, statErr := os.Stat(path); statErr == nil && !socketReachable(path) {
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return fmt.Errorf("remove stale socket: %w", removeErr)
			}
		}
	}
	return nil
}

func (d *DaemonService) removeSockets() {
	_ = os.Remove(d.store.CommandSocketPath())
	_ = os.Remove(d.store.EventSocketPath())
}

func waitForSocket(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if socketReachable(path) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon socket not ready: %s", path)
}

func socketReachable(path string) bool {
	conn, err := net.DialTimeout("unix", path, 150*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
