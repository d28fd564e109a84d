package out

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

const (
	earlyExitWindow = 400 * time.Millisecond
	stopGraceSteps  = 30
	stopGraceStep   = 100 * time.Millisecond
)

// FFmpegRecorder captures the screen by driving an ffmpeg child process.
// Pause and stop are signaled over the process stdin.
type FFmpegRecorder struct {
	logger hclog.Logger
	binary string
	goos   string
}

func NewFFmpegRecorder(logger hclog.Logger) *FFmpegRecorder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FFmpegRecorder{logger: logger.Named("recorder"), binary: "ffmpeg", goos: runtime.GOOS}
}

func (r *FFmpegRecorder) EnsureAvailable(context.Context) error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return apperrors.WithSuggestion("FFMPEG_NOT_FOUND", "ffmpeg binary not found", "install ffmpeg and make sure it is on PATH")
	}
	return nil
}

func (r *FFmpegRecorder) Capability(context.Context) domain.Capability {
	switch r.goos {
	case "darwin":
		return domain.Capability{
			Platform:                  "darwin",
			SupportsScreenCapture:     true,
			SupportsWindowCapture:     true,
			SupportsMicrophone:        true,
			SupportsSystemAudio:       false,
			SystemAudioDegradeMessage: "system audio capture on macos needs a loopback device, continuing without it",
		}
	case "windows":
		return domain.Capability{
			Platform:              "windows",
			SupportsScreenCapture: true,
			SupportsWindowCapture: true,
			SupportsMicrophone:    true,
			SupportsSystemAudio:   true,
		}
	default:
		return domain.Capability{
			Platform:                  r.goos,
			SupportsScreenCapture:     true,
			SupportsWindowCapture:     false,
			SupportsMicrophone:        true,
			SupportsSystemAudio:       false,
			SystemAudioDegradeMessage: "system audio capture is not supported on this platform, continuing without it",
		}
	}
}

func (r *FFmpegRecorder) ListAudioDevices(ctx context.Context) []domain.Device {
	devices := r.probeAudioDevices(ctx)
	if len(devices) == 0 {
		devices = []domain.Device{{ID: "default", Label: "System Default Microphone", Kind: "microphone"}}
	}
	return devices
}

func (r *FFmpegRecorder) probeAudioDevices(ctx context.Context) []domain.Device {
	var args []string
	switch r.goos {
	case "darwin":
		args = []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""}
	case "windows":
		args = []string{"-hide_banner", "-f", "dshow", "-list_devices", "true", "-i", "dummy"}
	default:
		return nil
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Device listing exits non-zero on purpose; the inventory is on stderr.
	_ = cmd.Run()

	var devices []domain.Device
	inAudioSection := r.goos != "darwin"
	scanner := bufio.NewScanner(&stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "audio devices") {
			inAudioSection = true
			continue
		}
		if strings.Contains(line, "video devices") {
			inAudioSection = false
			continue
		}
		if !inAudioSection {
			continue
		}
		open := strings.LastIndex(line, "[")
		end := strings.LastIndex(line, "]")
		if open < 0 || end <= open {
			continue
		}
		label := strings.TrimSpace(line[end+1:])
		label = strings.Trim(label, `"`)
		if label == "" {
			continue
		}
		devices = append(devices, domain.Device{
			ID:    strings.TrimSpace(line[open+1 : end]),
			Label: label,
			Kind:  "microphone",
		})
	}
	return devices
}

func (r *FFmpegRecorder) Start(ctx context.Context, profile projectdomain.RecordingProfile, outputPath string) (studioout.CaptureHandle, string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("create recording dir: %w", err)
	}

	handle, err := r.spawn(ctx, r.captureArgs(profile, outputPath, false))
	if err != nil {
		return nil, "", err
	}
	time.Sleep(earlyExitWindow)
	if !handle.Exited() {
		return handle, "", nil
	}

	// Most early deaths are an audio input that refused to open. Retry once
	// with a silent track so the capture itself still succeeds.
	r.logger.Warn("capture died early, retrying with silent audio", "output", outputPath)
	handle, err = r.spawn(ctx, r.captureArgs(profile, outputPath, true))
	if err != nil {
		return nil, "", err
	}
	time.Sleep(earlyExitWindow)
	if handle.Exited() {
		return nil, "", apperrors.WithSuggestion("RECORDING_SPAWN_FAILED", "capture process exited immediately", "check screen recording permission for this terminal")
	}
	return handle, "audio input failed to open, recording with a silent audio track", nil
}

func (r *FFmpegRecorder) spawn(ctx context.Context, args []string) (*captureHandle, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("capture stdin: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, apperrors.WithSuggestion("RECORDING_SPAWN_FAILED", "failed to start capture process: "+err.Error(), "check that ffmpeg works from a shell")
	}

	handle := &captureHandle{
		cmd:        cmd,
		stdin:      stdin,
		outputPath: args[len(args)-1],
		done:       make(chan struct{}),
	}
	go func() {
		handle.waitErr = cmd.Wait()
		close(handle.done)
	}()
	return handle, nil
}

// captureArgs builds the platform capture invocation. Silent mode swaps the
// microphone input for a generated null audio source.
func (r *FFmpegRecorder) captureArgs(profile projectdomain.RecordingProfile, outputPath string, silent bool) []string {
	frameRate := profile.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}
	rate := fmt.Sprintf("%d", frameRate)

	args := []string{"-y", "-hide_banner", "-loglevel", "warning"}
	switch r.goos {
	case "darwin":
		input := "1:0"
		if silent || profile.MicrophoneDeviceID == "" {
			input = "1:none"
		}
		args = append(args, "-f", "avfoundation", "-framerate", rate, "-capture_cursor", "1", "-i", input)
	case "windows":
		args = append(args, "-f", "gdigrab", "-framerate", rate, "-i", "desktop")
		if !silent && profile.MicrophoneDeviceID != "" {
			args = append(args, "-f", "dshow", "-i", "audio="+profile.MicrophoneDeviceID)
		}
	default:
		args = append(args, "-f", "x11grab", "-framerate", rate, "-i", ":0.0")
		if !silent {
			args = append(args, "-f", "pulse", "-i", "default")
		}
	}
	if silent {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}

type captureHandle struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	outputPath string
	done       chan struct{}
	waitErr    error

	mu sync.Mutex
}

func (h *captureHandle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *captureHandle) Pause() error {
	return h.signal("p\n")
}

func (h *captureHandle) Resume() error {
	return h.signal("p\n")
}

func (h *captureHandle) signal(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Exited() {
		return apperrors.New("RECORDING_PROCESS_GONE", "capture process is no longer running")
	}
	if _, err := io.WriteString(h.stdin, token); err != nil {
		return fmt.Errorf("signal capture process: %w", err)
	}
	return nil
}

// Stop asks ffmpeg to finalize the container, waits a bounded grace period
// and kills the process if it will not quit.
func (h *captureHandle) Stop(ctx context.Context) (studioout.CaptureResult, error) {
	h.mu.Lock()
	_, _ = io.WriteString(h.stdin, "q\n")
	_ = h.stdin.Close()
	h.mu.Unlock()

	stopped := false
	for i := 0; i < stopGraceSteps; i++ {
		if h.Exited() {
			stopped = true
			break
		}
		select {
		case <-ctx.Done():
			_ = h.cmd.Process.Kill()
			return studioout.CaptureResult{}, ctx.Err()
		case <-time.After(stopGraceStep):
		}
	}
	if !stopped {
		_ = h.cmd.Process.Kill()
		<-h.done
	}

	result := studioout.CaptureResult{OutputPath: h.outputPath}
	if info, err := os.Stat(h.outputPath); err == nil {
		result.Bytes = info.Size()
	}
	return result, nil
}
