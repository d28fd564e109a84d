package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	publishrpc "recstudio/internal/modules/publish/adapter/out/rpc"
	"recstudio/internal/modules/publish/domain"
	publishout "recstudio/internal/modules/publish/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() publishout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) ListTargets(ctx context.Context, manifest domain.Manifest) ([]domain.TargetDescriptor, error) {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.ListTargets(callCtx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	out := make([]domain.TargetDescriptor, 0, len(response.Targets))
	for _, target := range response.Targets {
		out = append(out, domain.TargetDescriptor{
			ID:              target.ID,
			Title:           target.Title,
			Description:     target.Description,
			InputSchemaJSON: target.InputSchemaJSON,
			TimeoutMS:       int(target.TimeoutMS),
		})
	}
	return out, nil
}

func (h *GRPCHost) Publish(ctx context.Context, manifest domain.Manifest, input domain.PublishRequest) (domain.PublishResult, error) {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return domain.PublishResult{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.Publish(callCtx, &publishrpc.PublishRequest{
		TargetID:  input.TargetID,
		InputJSON: input.InputJSON,
		Context: publishrpc.PublishContext{
			ProjectID:  input.Context.ProjectID,
			Title:      input.Context.Title,
			ExportPath: input.Context.ExportPath,
			Env:        input.Context.Env,
		},
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.PublishResult{}, fmt.Errorf("%w: target %s", domain.ErrPublisherTimeout, input.TargetID)
		}
		return domain.PublishResult{}, fmt.Errorf("publish: %w", err)
	}
	return domain.PublishResult{
		URL:      response.URL,
		Detail:   response.Detail,
		Stderr:   response.Stderr,
		ExitCode: int(response.ExitCode),
	}, nil
}

func (h *GRPCHost) connect(ctx context.Context, manifest domain.Manifest, startTimeout time.Duration) (publishrpc.PublisherClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  publishrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          publishrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start publisher client: %w", err)
	}
	raw, err := rpcClient.Dispense(publishrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense publisher: %w", err)
	}
	typed, ok := raw.(publishrpc.PublisherClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("publisher rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
