package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	projectdomain "recstudio/internal/modules/project/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

// FFmpegEncoder renders the final export. It prefers the platform hardware
// codec and falls back to libx264 when the hardware path fails.
type FFmpegEncoder struct {
	logger hclog.Logger
	binary string
	probe  string
	goos   string
}

func NewFFmpegEncoder(logger hclog.Logger) *FFmpegEncoder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FFmpegEncoder{logger: logger.Named("encoder"), binary: "ffmpeg", probe: "ffprobe", goos: runtime.GOOS}
}

func (e *FFmpegEncoder) DetectHardware(ctx context.Context) studioout.HardwareEncoder {
	preferred := ""
	switch e.goos {
	case "darwin":
		preferred = "h264_videotoolbox"
	case "windows":
		preferred = "h264_nvenc"
	}
	if preferred == "" {
		return studioout.HardwareEncoder{Codec: "libx264", Detail: "no hardware codec on this platform, using libx264"}
	}

	cmd := exec.CommandContext(ctx, e.binary, "-hide_banner", "-encoders")
	out, err := cmd.Output()
	if err != nil {
		return studioout.HardwareEncoder{Codec: "libx264", Detail: "encoder probe failed, using libx264"}
	}
	if strings.Contains(string(out), preferred) {
		return studioout.HardwareEncoder{Available: true, Codec: preferred, Detail: preferred + " available"}
	}
	return studioout.HardwareEncoder{Codec: "libx264", Detail: preferred + " not present, using libx264"}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, job studioout.EncodeJob) (studioout.EncodeResult, error) {
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return studioout.EncodeResult{}, fmt.Errorf("create renders dir: %w", err)
	}

	hw := e.DetectHardware(ctx)
	codec := hw.Codec
	stderr, err := e.runEncode(ctx, job, codec)
	if err != nil && hw.Available {
		e.logger.Warn("hardware encode failed, retrying with libx264", "codec", codec, "error", err)
		codec = "libx264"
		stderr, err = e.runEncode(ctx, job, codec)
	}
	result := studioout.EncodeResult{UsedCodec: codec, Stderr: stderr}
	if err != nil {
		return result, classifyExportError(stderr, err)
	}
	return result, nil
}

func (e *FFmpegEncoder) runEncode(ctx context.Context, job studioout.EncodeJob, codec string) (string, error) {
	args := encodeArgs(job, codec)
	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func encodeArgs(job studioout.EncodeJob, codec string) []string {
	timeline := job.Manifest.Timeline
	args := []string{"-y", "-hide_banner", "-loglevel", "warning", "-stats"}
	if timeline.TrimStartMS > 0 {
		args = append(args, "-ss", formatSeconds(timeline.TrimStartMS))
	}
	if timeline.TrimEndMS > 0 {
		args = append(args, "-to", formatSeconds(timeline.TrimEndMS))
	}
	args = append(args, "-i", job.InputPath)

	if filter := videoFilter(job.Manifest); filter != "" {
		args = append(args, "-vf", filter)
	}

	bitrate := job.Profile.BitrateMbps
	if bitrate <= 0 {
		bitrate = 8
	}
	fps := job.Profile.FPS
	if fps <= 0 {
		fps = 30
	}
	args = append(args,
		"-c:v", codec,
		"-b:v", fmt.Sprintf("%dM", bitrate),
		"-r", strconv.Itoa(fps),
		"-c:a", "aac",
		"-movflags", "+faststart",
		job.OutputPath,
	)
	return args
}

// videoFilter assembles the camera-motion zoom, the cursor highlight grade
// and the output scaling into one filter chain.
func videoFilter(manifest projectdomain.Manifest) string {
	var stages []string
	if manifest.CameraMotion.Enabled {
		zoom := zoomFactor(manifest.CameraMotion)
		if zoom > 1.001 {
			stages = append(stages, fmt.Sprintf("crop=iw/%.3f:ih/%.3f", zoom, zoom))
		}
	}
	if manifest.Timeline.CursorHighlightEnabled {
		stages = append(stages, "eq=contrast=1.03:saturation=1.06")
	}
	width, height := outputResolution(manifest.Export.Resolution, manifest.Timeline.AspectRatio)
	stages = append(stages, fmt.Sprintf("scale=%d:%d", width, height), "setsar=1")
	return strings.Join(stages, ",")
}

// zoomFactor derives the effective zoom from the intensity base, pulled
// toward maxZoom as smoothing decreases.
func zoomFactor(motion projectdomain.CameraMotionProfile) float64 {
	base := 1.08
	switch motion.Intensity {
	case projectdomain.IntensityLow:
		base = 1.03
	case projectdomain.IntensityHigh:
		base = 1.14
	}
	responsiveness := 1 - motion.Smoothing
	if responsiveness < 0 {
		responsiveness = 0
	}
	zoom := base + (motion.MaxZoom-base)*responsiveness*0.5
	if motion.MaxZoom > 1 && zoom > motion.MaxZoom {
		zoom = motion.MaxZoom
	}
	if zoom < 1 {
		zoom = 1
	}
	return zoom
}

func outputResolution(resolution, aspectRatio string) (int, int) {
	long, short := 1920, 1080
	if resolution == "720p" {
		long, short = 1280, 720
	}
	switch aspectRatio {
	case "9:16":
		return short, long
	case "1:1":
		return short, short
	default:
		return long, short
	}
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

func classifyExportError(stderr string, err error) error {
	switch {
	case strings.Contains(stderr, "Permission denied"):
		return apperrors.WithSuggestion("NO_PERMISSION", "export failed: permission denied writing output", "check write access to the project renders directory")
	case strings.Contains(stderr, "No space left"):
		return apperrors.WithSuggestion("NO_SPACE", "export failed: disk is full", "free up disk space and retry the export")
	case strings.Contains(stderr, "Error while opening encoder"),
		strings.Contains(stderr, "Impossible to convert"),
		strings.Contains(stderr, "InitializeEncoder"):
		return apperrors.WithSuggestion("ENCODER_FAIL", "export failed: encoder rejected the job", "retry the export, it will fall back to software encoding")
	default:
		return apperrors.WithSuggestion("IO_FAIL", "export failed: "+err.Error(), "check the export log for details")
	}
}

type probeReport struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (e *FFmpegEncoder) Probe(ctx context.Context, path string) (studioout.MediaSummary, error) {
	cmd := exec.CommandContext(ctx, e.probe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return studioout.MediaSummary{}, fmt.Errorf("probe %s: %w", path, err)
	}
	var report probeReport
	if err := json.Unmarshal(out, &report); err != nil {
		return studioout.MediaSummary{}, fmt.Errorf("decode probe output: %w", err)
	}

	summary := studioout.MediaSummary{ContainerDurationMS: secondsToMS(report.Format.Duration)}
	for _, stream := range report.Streams {
		switch stream.CodecType {
		case "video":
			summary.VideoDurationMS = secondsToMS(stream.Duration)
		case "audio":
			summary.AudioDurationMS = secondsToMS(stream.Duration)
		}
	}
	return summary, nil
}

func secondsToMS(value string) int64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return int64(seconds * 1000)
}
