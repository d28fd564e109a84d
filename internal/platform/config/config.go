package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config pins the on-disk layout rooted at the studio data directory.
type Config struct {
	DataDir      string
	ProjectsDir  string
	DBPath       string
	ProfilesPath string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:      dataDir,
		ProjectsDir:  filepath.Join(dataDir, "projects"),
		DBPath:       filepath.Join(dataDir, ".recstudio", "index.db"),
		ProfilesPath: filepath.Join(dataDir, ".recstudio", "profiles.yaml"),
	}, nil
}

type Hotkeys struct {
	StartStop   string `yaml:"startStop"`
	PauseResume string `yaml:"pauseResume"`
}

type RecordingDefaults struct {
	CaptureMode        string  `yaml:"captureMode"`
	WindowTarget       string  `yaml:"windowTarget"`
	FrameRate          int     `yaml:"frameRate"`
	Resolution         string  `yaml:"resolution"`
	MicrophoneDeviceID string  `yaml:"microphoneDeviceId"`
	SystemAudioEnabled bool    `yaml:"systemAudioEnabled"`
	Hotkeys            Hotkeys `yaml:"hotkeys"`
}

type ExportDefaults struct {
	Format      string `yaml:"format"`
	Resolution  string `yaml:"resolution"`
	BitrateMbps int    `yaml:"bitrateMbps"`
	FPS         int    `yaml:"fps"`
	VideoCodec  string `yaml:"videoCodec"`
	AudioCodec  string `yaml:"audioCodec"`
}

// Profiles is the operator-editable profiles.yaml. Missing file yields
// defaults; a present file overrides field by field.
type Profiles struct {
	Recording RecordingDefaults `yaml:"recording"`
	Export    ExportDefaults    `yaml:"export"`
}

func DefaultProfiles() Profiles {
	return Profiles{
		Recording: RecordingDefaults{
			CaptureMode:        "fullscreen",
			FrameRate:          30,
			Resolution:         "1080p",
			SystemAudioEnabled: true,
			Hotkeys: Hotkeys{
				StartStop:   "Ctrl+Shift+R",
				PauseResume: "Ctrl+Shift+P",
			},
		},
		Export: ExportDefaults{
			Format:      "mp4",
			Resolution:  "1080p",
			BitrateMbps: 8,
			FPS:         30,
			VideoCodec:  "h264",
			AudioCodec:  "aac",
		},
	}
}

func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return Profiles{}, fmt.Errorf("read profiles: %w", err)
	}
	if err := yaml.Unmarshal(raw, &profiles); err != nil {
		return Profiles{}, fmt.Errorf("parse profiles: %w", err)
	}
	return profiles, nil
}

func SaveProfiles(path string, profiles Profiles) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profiles dir: %w", err)
	}
	raw, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
