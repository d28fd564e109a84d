package out

import (
	"context"

	"recstudio/internal/modules/project/domain"
	projectout "recstudio/internal/modules/project/port/out"
	"recstudio/internal/platform/ipc"
)

type IPCBackend struct {
	socketPath string
}

func NewIPCBackend(socketPath string) projectout.Backend {
	return &IPCBackend{socketPath: socketPath}
}

type projectReq struct {
	ProjectID string
}

type loadProjectResp struct {
	Manifest domain.Manifest
}

type patchTimelineReq struct {
	ProjectID string
	Patch     domain.TimelinePatch
}

type patchCameraMotionReq struct {
	ProjectID string
	Patch     domain.CameraMotionPatch
}

type listProjectsResp struct {
	Projects []domain.ListItem
}

type updateTitleReq struct {
	ProjectID string
	Title     string
}

type recoverResp struct {
	Projects []domain.Recoverable
}

type empty struct{}

func (b *IPCBackend) LoadProject(ctx context.Context, projectID string) (domain.Manifest, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return domain.Manifest{}, err
	}
	defer client.Close()
	resp := loadProjectResp{}
	if err := client.Call("Studio.LoadProject", projectReq{ProjectID: projectID}, &resp); err != nil {
		return domain.Manifest{}, err
	}
	return resp.Manifest, nil
}

func (b *IPCBackend) PatchTimeline(ctx context.Context, projectID string, patch domain.TimelinePatch) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.PatchTimeline", patchTimelineReq{ProjectID: projectID, Patch: patch}, &empty{})
}

func (b *IPCBackend) PatchCameraMotion(ctx context.Context, projectID string, patch domain.CameraMotionPatch) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.PatchCameraMotion", patchCameraMotionReq{ProjectID: projectID, Patch: patch}, &empty{})
}

func (b *IPCBackend) ListProjects(ctx context.Context) ([]domain.ListItem, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	resp := listProjectsResp{}
	if err := client.Call("Studio.ListProjects", empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

func (b *IPCBackend) UpdateTitle(ctx context.Context, projectID, title string) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.UpdateProjectTitle", updateTitleReq{ProjectID: projectID, Title: title}, &empty{})
}

func (b *IPCBackend) DeleteProject(ctx context.Context, projectID string) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.DeleteProject", projectReq{ProjectID: projectID}, &empty{})
}

func (b *IPCBackend) RecoverProjects(ctx context.Context) ([]domain.Recoverable, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	resp := recoverResp{}
	if err := client.Call("Studio.RecoverProjects", empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}
