package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	studioout "recstudio/internal/modules/studio/port/out"
)

// FileDaemonStore keeps the daemon's runtime artifacts under the studio
// root: pid file, command socket, event socket and log.
type FileDaemonStore struct {
	dir string
}

func NewFileDaemonStore(root string) studioout.DaemonStore {
	return &FileDaemonStore{dir: filepath.Join(root, "daemon")}
}

func (s *FileDaemonStore) pidPath() string {
	return filepath.Join(s.dir, "daemon.pid")
}

func (s *FileDaemonStore) CommandSocketPath() string {
	return filepath.Join(s.dir, "command.sock")
}

func (s *FileDaemonStore) EventSocketPath() string {
	return filepath.Join(s.dir, "events.sock")
}

func (s *FileDaemonStore) LogPath() string {
	return filepath.Join(s.dir, "daemon.log")
}

func (s *FileDaemonStore) WritePID(_ context.Context, pid int) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create daemon dir: %w", err)
	}
	return os.WriteFile(s.pidPath(), []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

func (s *FileDaemonStore) ReadPID(context.Context) (int, error) {
	raw, err := os.ReadFile(s.pidPath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file: %w", err)
	}
	return pid, nil
}

func (s *FileDaemonStore) ClearPID(context.Context) error {
	err := os.Remove(s.pidPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
