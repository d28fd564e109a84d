package bootstrap

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	exportinadapter "recstudio/internal/modules/export/adapter/in"
	exportoutadapter "recstudio/internal/modules/export/adapter/out"
	exportservice "recstudio/internal/modules/export/service"
	exportusecase "recstudio/internal/modules/export/usecase"
	projectinadapter "recstudio/internal/modules/project/adapter/in"
	projectoutadapter "recstudio/internal/modules/project/adapter/out"
	projectservice "recstudio/internal/modules/project/service"
	projectusecase "recstudio/internal/modules/project/usecase"
	publishinadapter "recstudio/internal/modules/publish/adapter/in"
	publishoutadapter "recstudio/internal/modules/publish/adapter/out"
	publishservice "recstudio/internal/modules/publish/service"
	publishusecase "recstudio/internal/modules/publish/usecase"
	recordinginadapter "recstudio/internal/modules/recording/adapter/in"
	recordingoutadapter "recstudio/internal/modules/recording/adapter/out"
	recordingdomain "recstudio/internal/modules/recording/domain"
	recordingservice "recstudio/internal/modules/recording/service"
	recordingusecase "recstudio/internal/modules/recording/usecase"
	studioinadapter "recstudio/internal/modules/studio/adapter/in"
	studiooutadapter "recstudio/internal/modules/studio/adapter/out"
	studioservice "recstudio/internal/modules/studio/service"
	studiousecase "recstudio/internal/modules/studio/usecase"
	"recstudio/internal/platform/clock"
	"recstudio/internal/platform/config"
	"recstudio/internal/platform/id"
	uiapp "recstudio/internal/ui/app"
)

const appVersion = "1.0.0"

const subscribeRetryDelay = time.Second

type App struct {
	RecordingCLI recordinginadapter.CLIHandler
	ProjectCLI   projectinadapter.CLIHandler
	ExportCLI    exportinadapter.CLIHandler
	StudioCLI    studioinadapter.CLIHandler
	PublishCLI   publishinadapter.CLIHandler

	controller      *recordingservice.Controller
	engine          *exportservice.Engine
	eventSocketPath string
	logger          hclog.Logger
}

func New(cfg config.Config, logger hclog.Logger) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	// Daemon side: the core service plus everything it drives. The same
	// wiring runs in every process; only `daemon run` actually serves it.
	manifests := studiooutadapter.NewFileManifestStore(cfg.DataDir)
	index, err := studiooutadapter.NewSQLiteProjectIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open project index: %w", err)
	}
	hub := studiooutadapter.NewEventHub(logger)
	daemonStore := studiooutadapter.NewFileDaemonStore(cfg.DataDir)
	daemonSvc := studioservice.NewDaemonService(daemonStore, studiooutadapter.NewJSONRPCServer(), hub, logger)
	core := studioservice.NewService(studioservice.Deps{
		Recorder:   studiooutadapter.NewFFmpegRecorder(logger),
		Encoder:    studiooutadapter.NewFFmpegEncoder(logger),
		Manifests:  manifests,
		Index:      index,
		Events:     hub,
		Clock:      clk,
		IDs:        ids,
		Logger:     logger,
		AppVersion: appVersion,
		OnShutdown: daemonSvc.RequestStop,
	})
	studioUC := studiousecase.NewInteractor(core, daemonSvc, daemonStore)

	// Client side: controllers that talk to the daemon over the command
	// socket and reconcile push events from the event socket.
	socketPath := daemonStore.CommandSocketPath()
	controller := recordingservice.NewController(recordingoutadapter.NewIPCBackend(socketPath))
	recordingUC := recordingusecase.NewInteractor(controller)

	projectBackend := projectoutadapter.NewIPCBackend(socketPath)
	queue := projectservice.NewMutationQueue(projectBackend, logger)
	projectUC := projectusecase.NewInteractor(queue, projectBackend)

	engine := exportservice.NewEngine(exportoutadapter.NewIPCBackend(socketPath), clock.SystemSleeper{}, logger)
	exportUC := exportusecase.NewInteractor(engine, projectUC)

	publishUC := publishusecase.NewInteractor(publishservice.NewPublishService(
		publishoutadapter.NewFileManifestStore(cfg.DataDir),
		publishoutadapter.NewGRPCHost(),
	))

	return &App{
		RecordingCLI:    recordinginadapter.NewCLIHandler(recordingUC),
		ProjectCLI:      projectinadapter.NewCLIHandler(projectUC),
		ExportCLI:       exportinadapter.NewCLIHandler(exportUC),
		StudioCLI:       studioinadapter.NewCLIHandler(studioUC),
		PublishCLI:      publishinadapter.NewCLIHandler(publishUC),
		controller:      controller,
		engine:          engine,
		eventSocketPath: daemonStore.EventSocketPath(),
		logger:          logger,
	}, nil
}

// StartEventStreams feeds daemon push notifications into the client-side
// controllers. Subscriptions retry until the daemon comes up or the context
// ends, so a TUI started before the daemon still attaches.
func (a *App) StartEventStreams(ctx context.Context) {
	recordingStream := recordingoutadapter.NewSocketEventStream(a.eventSocketPath)
	exportStream := exportoutadapter.NewSocketEventStream(a.eventSocketPath)

	go a.resubscribe(ctx, "recording", func(ctx context.Context) error {
		return recordingStream.Subscribe(ctx, func(event recordingdomain.StatusEvent) {
			a.controller.ApplyEvent(event)
		})
	})
	go a.resubscribe(ctx, "export", func(ctx context.Context) error {
		return exportStream.Subscribe(ctx, a.engine.ApplyUpdate)
	})
}

func (a *App) resubscribe(ctx context.Context, name string, subscribe func(context.Context) error) {
	for {
		if err := subscribe(ctx); err != nil && ctx.Err() == nil {
			a.logger.Debug("event subscription dropped", "stream", name, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(subscribeRetryDelay):
		}
	}
}

func RunTUI(ctx context.Context, app *App) error {
	app.StartEventStreams(ctx)
	model := uiapp.NewModel(app.RecordingCLI, app.ProjectCLI, app.ExportCLI, app.PublishCLI, app.StudioCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
