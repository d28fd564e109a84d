package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	publishrpc "recstudio/internal/modules/publish/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const targetLocalDir = "local-dir"

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *publishrpc.Empty) (*publishrpc.Metadata, error) {
	return &publishrpc.Metadata{
		Name:         "copydir",
		Version:      "1.0.0",
		Capabilities: []string{"publish", "validate"},
	}, nil
}

func (s *server) ListTargets(_ context.Context, _ *publishrpc.Empty) (*publishrpc.ListTargetsResponse, error) {
	return &publishrpc.ListTargetsResponse{Targets: []publishrpc.TargetDescriptor{
		{
			ID:              targetLocalDir,
			Title:           "Local directory",
			Description:     "Copies the finished export into a destination directory",
			InputSchemaJSON: `{"type":"object","properties":{"dir":{"type":"string"}},"required":["dir"]}`,
			TimeoutMS:       10000,
		},
	}}, nil
}

func (s *server) Publish(_ context.Context, in *publishrpc.PublishRequest) (*publishrpc.PublishResponse, error) {
	if in.TargetID != targetLocalDir {
		return nil, fmt.Errorf("unknown target: %s", in.TargetID)
	}
	var input struct {
		Dir string `json:"dir"`
	}
	if strings.TrimSpace(in.InputJSON) != "" {
		if err := json.Unmarshal([]byte(in.InputJSON), &input); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
	}
	if input.Dir == "" {
		return &publishrpc.PublishResponse{Stderr: "input field dir is required", ExitCode: 2}, nil
	}
	if err := os.MkdirAll(input.Dir, 0o755); err != nil {
		return &publishrpc.PublishResponse{Stderr: err.Error(), ExitCode: 1}, nil
	}

	name := filepath.Base(in.Context.ExportPath)
	if in.Context.ProjectID != "" {
		name = in.Context.ProjectID + "-" + name
	}
	destination := filepath.Join(input.Dir, name)
	if err := copyFile(in.Context.ExportPath, destination); err != nil {
		return &publishrpc.PublishResponse{Stderr: err.Error(), ExitCode: 1}, nil
	}
	return &publishrpc.PublishResponse{
		URL:      "file://" + destination,
		Detail:   fmt.Sprintf("copied %s", name),
		ExitCode: 0,
	}, nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("copy export: %w", err)
	}
	return destination.Close()
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: publishrpc.HandshakeConfig,
		Plugins:         publishrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
