package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"recstudio/internal/bootstrap"
	exportdto "recstudio/internal/modules/export/dto"
	projectdto "recstudio/internal/modules/project/dto"
	publishdto "recstudio/internal/modules/publish/dto"
	recordingdto "recstudio/internal/modules/recording/dto"
	"recstudio/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "recstudio",
		Short:         "Terminal screen recording studio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "studio data directory")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newRecordCmd(&dataDir))
	root.AddCommand(newProjectCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newDaemonCmd(&dataDir))
	root.AddCommand(newDevicesCmd(&dataDir))
	root.AddCommand(newCapabilityCmd(&dataDir))
	root.AddCommand(newPublishCmd(&dataDir))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "RecStudio")
}

func loadApp(dataDir string) (*bootstrap.App, config.Config, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, config.Config{}, err
	}
	level := hclog.LevelFromString(os.Getenv("RECSTUDIO_LOG"))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	logger := hclog.New(&hclog.LoggerOptions{Name: "recstudio", Level: level, Output: os.Stderr})
	app, err := bootstrap.New(cfg, logger)
	return app, cfg, err
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the recstudio terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newRecordCmd(dataDir *string) *cobra.Command {
	record := &cobra.Command{Use: "record", Short: "Recording session lifecycle"}

	var mode, window, resolution, mic string
	var fps int
	var systemAudio bool
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a recording session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cfg, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			profiles, err := config.LoadProfiles(cfg.ProfilesPath)
			if err != nil {
				return err
			}
			input := recordingdto.StartInput{
				CaptureMode:        profiles.Recording.CaptureMode,
				WindowTarget:       profiles.Recording.WindowTarget,
				FrameRate:          profiles.Recording.FrameRate,
				Resolution:         profiles.Recording.Resolution,
				MicrophoneDeviceID: profiles.Recording.MicrophoneDeviceID,
				SystemAudioEnabled: profiles.Recording.SystemAudioEnabled,
			}
			if cmd.Flags().Changed("mode") {
				input.CaptureMode = mode
			}
			if cmd.Flags().Changed("window") {
				input.WindowTarget = window
			}
			if cmd.Flags().Changed("fps") {
				input.FrameRate = fps
			}
			if cmd.Flags().Changed("resolution") {
				input.Resolution = resolution
			}
			if cmd.Flags().Changed("mic") {
				input.MicrophoneDeviceID = mic
			}
			if cmd.Flags().Changed("system-audio") {
				input.SystemAudioEnabled = systemAudio
			}
			out, err := app.RecordingCLI.Start(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recording started: session=%s source=%s\n", out.SessionID, out.SourceLabel)
			if out.DegradeMessage != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.DegradeMessage)
			}
			return nil
		},
	}
	start.Flags().StringVar(&mode, "mode", "fullscreen", "capture mode: fullscreen|window")
	start.Flags().StringVar(&window, "window", "", "window target (window mode)")
	start.Flags().IntVar(&fps, "fps", 30, "capture frame rate")
	start.Flags().StringVar(&resolution, "resolution", "1080p", "capture resolution")
	start.Flags().StringVar(&mic, "mic", "", "microphone device id")
	start.Flags().BoolVar(&systemAudio, "system-audio", true, "capture system audio when supported")

	record.AddCommand(start)
	record.AddCommand(&cobra.Command{
		Use:   "pause",
		Short: "Pause the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.RecordingCLI.Pause(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "paused at %s\n", formatDuration(out.DurationMS))
			return nil
		},
	})
	record.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.RecordingCLI.Resume(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recording resumed at %s\n", formatDuration(out.DurationMS))
			return nil
		},
	})
	record.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the session and materialize a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.RecordingCLI.Stop(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "project saved: %s\n", out.ProjectID)
			return nil
		},
	})
	record.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the local session snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.RecordingCLI.Current(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s session=%s duration=%s source=%q\n", out.Status, out.SessionID, formatDuration(out.DurationMS), out.SourceLabel)
			if out.ErrorMessage != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error=%s: %s\n", out.ErrorCode, out.ErrorMessage)
			}
			return nil
		},
	})
	return record
}

func newProjectCmd(dataDir *string) *cobra.Command {
	project := &cobra.Command{Use: "project", Short: "Project inspection and editing"}

	project.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			projects, err := app.ProjectCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no projects")
				return nil
			}
			for _, p := range projects {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\texported=%t\n", p.ProjectID, p.Status, formatDuration(p.DurationMS), p.Title, p.HasExport)
			}
			return nil
		},
	})

	var showID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show project manifest details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(showID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			p, err := app.ProjectCLI.Load(context.Background(), showID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ntitle: %s\nstatus: %s\ncreated: %s\ntrim: %d..%d ms\naspect: %s\ncursor_highlight: %t\n",
				p.ProjectID, p.Title, p.Status, p.CreatedAt.Format(time.RFC3339), p.Timeline.TrimStartMS, p.Timeline.TrimEndMS, p.Timeline.AspectRatio, p.Timeline.CursorHighlightEnabled)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "motion: enabled=%t intensity=%s smoothing=%.2f max_zoom=%.2f\n",
				p.CameraMotion.Enabled, p.CameraMotion.Intensity, p.CameraMotion.Smoothing, p.CameraMotion.MaxZoom)
			if p.RawRecordingPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "raw: %s\n", p.RawRecordingPath)
			}
			if p.LastExportPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "export: %s\n", p.LastExportPath)
			}
			if p.ErrorMessage != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error=%s: %s\n", p.ErrorCode, p.ErrorMessage)
			}
			return nil
		},
	}
	show.Flags().StringVar(&showID, "id", "", "project id")
	project.AddCommand(show)

	var trimID string
	var trimStart, trimEnd int64
	trim := &cobra.Command{
		Use:   "trim --id <id> --start <ms> --end <ms>",
		Short: "Set the trim window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(trimID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.ProjectCLI.Trim(context.Background(), trimID, trimStart, trimEnd); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "trim set: %d..%d ms\n", trimStart, trimEnd)
			return nil
		},
	}
	trim.Flags().StringVar(&trimID, "id", "", "project id")
	trim.Flags().Int64Var(&trimStart, "start", 0, "trim start in ms")
	trim.Flags().Int64Var(&trimEnd, "end", 0, "trim end in ms")
	project.AddCommand(trim)

	var aspectID, aspectRatio string
	aspect := &cobra.Command{
		Use:   "aspect --id <id> --ratio <16:9|9:16|1:1>",
		Short: "Set the output aspect ratio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(aspectID) == "" || strings.TrimSpace(aspectRatio) == "" {
				return fmt.Errorf("--id and --ratio are required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.ProjectCLI.Aspect(context.Background(), aspectID, aspectRatio); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "aspect set: %s\n", aspectRatio)
			return nil
		},
	}
	aspect.Flags().StringVar(&aspectID, "id", "", "project id")
	aspect.Flags().StringVar(&aspectRatio, "ratio", "", "aspect ratio")
	project.AddCommand(aspect)

	var motionID, intensity string
	var motionEnabled bool
	var smoothing, maxZoom float64
	motion := &cobra.Command{
		Use:   "motion --id <id>",
		Short: "Tune automatic camera motion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(motionID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			patch := projectdto.CameraMotionPatchInput{}
			if cmd.Flags().Changed("enabled") {
				patch.Enabled = &motionEnabled
			}
			if cmd.Flags().Changed("intensity") {
				patch.Intensity = &intensity
			}
			if cmd.Flags().Changed("smoothing") {
				patch.Smoothing = &smoothing
			}
			if cmd.Flags().Changed("max-zoom") {
				patch.MaxZoom = &maxZoom
			}
			if err := app.ProjectCLI.Motion(context.Background(), motionID, patch); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "camera motion updated")
			return nil
		},
	}
	motion.Flags().StringVar(&motionID, "id", "", "project id")
	motion.Flags().BoolVar(&motionEnabled, "enabled", true, "enable camera motion")
	motion.Flags().StringVar(&intensity, "intensity", "medium", "low|medium|high")
	motion.Flags().Float64Var(&smoothing, "smoothing", 0.5, "smoothing 0..1")
	motion.Flags().Float64Var(&maxZoom, "max-zoom", 1.5, "zoom ceiling")
	project.AddCommand(motion)

	var renameID, renameTitle string
	rename := &cobra.Command{
		Use:   "rename --id <id> --title <title>",
		Short: "Rename a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(renameID) == "" || strings.TrimSpace(renameTitle) == "" {
				return fmt.Errorf("--id and --title are required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.ProjectCLI.Rename(context.Background(), renameID, renameTitle); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed to %q\n", renameTitle)
			return nil
		},
	}
	rename.Flags().StringVar(&renameID, "id", "", "project id")
	rename.Flags().StringVar(&renameTitle, "title", "", "new title")
	project.AddCommand(rename)

	var deleteID string
	deleteCmd := &cobra.Command{
		Use:   "delete --id <id>",
		Short: "Delete a project and its assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(deleteID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.ProjectCLI.Delete(context.Background(), deleteID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", deleteID)
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "project id")
	project.AddCommand(deleteCmd)

	project.AddCommand(&cobra.Command{
		Use:   "recover",
		Short: "Recover projects from interrupted recordings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			recovered, err := app.ProjectCLI.Recover(context.Background())
			if err != nil {
				return err
			}
			if len(recovered) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to recover")
				return nil
			}
			for _, r := range recovered {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ProjectID, r.Reason, r.Path)
			}
			return nil
		},
	})
	return project
}

func newExportCmd(dataDir *string) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Render pipeline control"}

	var projectID, resolution, format string
	var fps, bitrate int
	start := &cobra.Command{
		Use:   "start --project <id>",
		Short: "Start a render task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(projectID) == "" {
				return fmt.Errorf("--project is required")
			}
			app, cfg, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			profiles, err := config.LoadProfiles(cfg.ProfilesPath)
			if err != nil {
				return err
			}
			input := exportdto.StartInput{
				ProjectID:   projectID,
				Format:      profiles.Export.Format,
				Resolution:  profiles.Export.Resolution,
				BitrateMbps: profiles.Export.BitrateMbps,
				FPS:         profiles.Export.FPS,
			}
			if cmd.Flags().Changed("resolution") {
				input.Resolution = resolution
			}
			if cmd.Flags().Changed("format") {
				input.Format = format
			}
			if cmd.Flags().Changed("fps") {
				input.FPS = fps
			}
			if cmd.Flags().Changed("bitrate") {
				input.BitrateMbps = bitrate
			}
			out, err := app.ExportCLI.Start(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "export started: task=%s project=%s\n", out.TaskID, out.ProjectID)
			return nil
		},
	}
	start.Flags().StringVar(&projectID, "project", "", "project id")
	start.Flags().StringVar(&resolution, "resolution", "1080p", "output resolution")
	start.Flags().StringVar(&format, "format", "mp4", "output format")
	start.Flags().IntVar(&fps, "fps", 30, "output frame rate")
	start.Flags().IntVar(&bitrate, "bitrate", 8, "video bitrate in Mbps")
	export.AddCommand(start)

	export.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Retry the failed export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.ExportCLI.Retry(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "export retried: task=%s retries=%d\n", out.TaskID, out.Retries)
			return nil
		},
	})
	export.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the tracked export task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.ExportCLI.Current(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task=%s project=%s status=%s progress=%d%% retries=%d\n", out.TaskID, out.ProjectID, out.Status, out.Progress, out.Retries)
			if out.Detail != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Detail)
			}
			if out.OutputPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "output=%s\n", out.OutputPath)
			}
			if out.ErrorMessage != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error=%s: %s\n", out.ErrorCode, out.ErrorMessage)
				if out.Suggestion != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Suggestion)
				}
			}
			return nil
		},
	})
	return export
}

func newDaemonCmd(dataDir *string) *cobra.Command {
	daemon := &cobra.Command{Use: "daemon", Short: "Manage the studio daemon"}

	daemon.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			return app.StudioCLI.RunDaemon(context.Background())
		},
	})
	daemon.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.StudioCLI.StartDaemon(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "daemon started")
			return nil
		},
	})
	daemon.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.StudioCLI.StopDaemon(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
			return nil
		},
	})
	daemon.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			status, err := app.StudioCLI.DaemonStatus(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "running=%t pid=%d socket=%s events=%s\n", status.Running, status.PID, status.SocketPath, status.EventPath)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "log=%s\n", status.LogPath)
			return nil
		},
	})
	return daemon
}

func newDevicesCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			devices, err := app.StudioCLI.Devices(context.Background())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no devices")
				return nil
			}
			for _, device := range devices {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", device.ID, device.Kind, device.Label)
			}
			return nil
		},
	}
}

func newCapabilityCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "capability",
		Short: "Show platform capture capabilities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			capability, err := app.StudioCLI.Capability(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "platform=%s screen=%t window=%t microphone=%t system_audio=%t\n",
				capability.Platform, capability.SupportsScreenCapture, capability.SupportsWindowCapture, capability.SupportsMicrophone, capability.SupportsSystemAudio)
			if capability.DegradeMessage != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), capability.DegradeMessage)
			}
			return nil
		},
	}
}

func newPublishCmd(dataDir *string) *cobra.Command {
	publish := &cobra.Command{Use: "publish", Short: "Publisher plugin operations"}

	publish.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List publisher manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			publishers, err := app.PublishCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(publishers) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no publishers configured")
				return nil
			}
			for _, p := range publishers {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", p.Name, p.Version, p.Enabled, p.Binary)
			}
			return nil
		},
	})

	publish.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate publisher checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			results, err := app.PublishCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no publishers configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var targetsPublisher string
	targetsCmd := &cobra.Command{
		Use:   "targets --publisher <name>",
		Short: "List targets exposed by a publisher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(targetsPublisher) == "" {
				return fmt.Errorf("--publisher is required")
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			targets, err := app.PublishCLI.ListTargets(context.Background(), targetsPublisher)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no targets")
				return nil
			}
			for _, target := range targets {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s timeout_ms=%d title=%q\n", target.ID, target.TimeoutMS, target.Title)
			}
			return nil
		},
	}
	targetsCmd.Flags().StringVar(&targetsPublisher, "publisher", "", "publisher name")
	publish.AddCommand(targetsCmd)

	var runPublisher, runTarget, runProject, runInputJSON string
	runCmd := &cobra.Command{
		Use:   "run --publisher <name> --target <id> --project <id>",
		Short: "Deliver a finished export through a publisher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(runPublisher) == "" || strings.TrimSpace(runTarget) == "" || strings.TrimSpace(runProject) == "" {
				return fmt.Errorf("--publisher, --target, and --project are required")
			}
			if err := validateJSONInput(runInputJSON); err != nil {
				return err
			}
			app, _, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			project, err := app.ProjectCLI.Load(context.Background(), runProject)
			if err != nil {
				return err
			}
			if project.LastExportPath == "" {
				return fmt.Errorf("project %s has no finished export", runProject)
			}
			out, err := app.PublishCLI.Publish(context.Background(), publishdto.PublishInput{
				PublisherName: runPublisher,
				TargetID:      runTarget,
				InputJSON:     runInputJSON,
				ProjectID:     project.ProjectID,
				Title:         project.Title,
				ExportPath:    project.LastExportPath,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "publisher=%s target=%s exit=%d\n", out.PublisherName, out.TargetID, out.ExitCode)
			if out.URL != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.URL)
			}
			if out.Detail != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Detail)
			}
			if strings.TrimSpace(out.Stderr) != "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&runPublisher, "publisher", "", "publisher name")
	runCmd.Flags().StringVar(&runTarget, "target", "", "target id")
	runCmd.Flags().StringVar(&runProject, "project", "", "project id")
	runCmd.Flags().StringVar(&runInputJSON, "input-json", "", "JSON input payload")
	publish.AddCommand(runCmd)

	return publish
}

func validateJSONInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if !json.Valid([]byte(input)) {
		return fmt.Errorf("--input-json must be valid JSON")
	}
	return nil
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
