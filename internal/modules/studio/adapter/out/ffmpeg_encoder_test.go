package out

import (
	"errors"
	"strings"
	"testing"
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

func baseManifest() projectdomain.Manifest {
	return projectdomain.NewManifest(projectdomain.RecordingProfile{CaptureMode: "fullscreen"}, "1.0.0", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestEncodeArgsIncludeTrimWindow(t *testing.T) {
	t.Parallel()

	manifest := baseManifest()
	manifest.Timeline.TrimStartMS = 1500
	manifest.Timeline.TrimEndMS = 9000

	args := encodeArgs(studioout.EncodeJob{
		Manifest:   manifest,
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Profile:    manifest.Export,
	}, "libx264")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 1.500") || !strings.Contains(joined, "-to 9.000") {
		t.Fatalf("args = %v", args)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Fatalf("output not last: %v", args)
	}
}

func TestVideoFilterStages(t *testing.T) {
	t.Parallel()

	manifest := baseManifest()
	filter := videoFilter(manifest)
	if !strings.Contains(filter, "crop=") {
		t.Fatalf("filter = %q, want camera crop for enabled motion", filter)
	}
	if !strings.Contains(filter, "eq=contrast=1.03:saturation=1.06") {
		t.Fatalf("filter = %q, want cursor highlight grade", filter)
	}
	if !strings.Contains(filter, "scale=1920:1080") {
		t.Fatalf("filter = %q, want 16:9 1080p scale", filter)
	}

	manifest.CameraMotion.Enabled = false
	manifest.Timeline.CursorHighlightEnabled = false
	manifest.Timeline.AspectRatio = "9:16"
	filter = videoFilter(manifest)
	if strings.Contains(filter, "crop=") || strings.Contains(filter, "eq=") {
		t.Fatalf("filter = %q, want scale only", filter)
	}
	if !strings.Contains(filter, "scale=1080:1920") {
		t.Fatalf("filter = %q, want portrait scale", filter)
	}
}

func TestZoomFactorRespectsCap(t *testing.T) {
	t.Parallel()

	motion := projectdomain.CameraMotionProfile{Intensity: projectdomain.IntensityHigh, Smoothing: 0, MaxZoom: 1.2}
	if zoom := zoomFactor(motion); zoom > 1.2001 {
		t.Fatalf("zoom = %v, exceeds maxZoom", zoom)
	}

	motion = projectdomain.CameraMotionProfile{Intensity: projectdomain.IntensityLow, Smoothing: 1, MaxZoom: 2}
	if zoom := zoomFactor(motion); zoom < 1.029 || zoom > 1.031 {
		t.Fatalf("zoom = %v, want intensity base with full smoothing", zoom)
	}
}

func TestOutputResolutionMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		resolution, aspect string
		width, height      int
	}{
		{"1080p", "16:9", 1920, 1080},
		{"1080p", "9:16", 1080, 1920},
		{"1080p", "1:1", 1080, 1080},
		{"720p", "16:9", 1280, 720},
		{"720p", "9:16", 720, 1280},
		{"720p", "1:1", 720, 720},
	}
	for _, tc := range cases {
		width, height := outputResolution(tc.resolution, tc.aspect)
		if width != tc.width || height != tc.height {
			t.Fatalf("%s %s = %dx%d, want %dx%d", tc.resolution, tc.aspect, width, height, tc.width, tc.height)
		}
	}
}

func TestClassifyExportError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stderr string
		code   string
	}{
		{"out.mp4: Permission denied", "NO_PERMISSION"},
		{"av_write_frame: No space left on device", "NO_SPACE"},
		{"Error while opening encoder for output stream", "ENCODER_FAIL"},
		{"something else entirely", "IO_FAIL"},
	}
	for _, tc := range cases {
		err := classifyExportError(tc.stderr, errors.New("exit status 1"))
		var appErr apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != tc.code {
			t.Fatalf("stderr %q classified as %v, want %s", tc.stderr, err, tc.code)
		}
	}
}

func TestSecondsToMS(t *testing.T) {
	t.Parallel()

	if ms := secondsToMS("5.250"); ms != 5250 {
		t.Fatalf("ms = %d", ms)
	}
	if ms := secondsToMS("garbage"); ms != 0 {
		t.Fatalf("ms = %d, want 0 for unparseable input", ms)
	}
}
