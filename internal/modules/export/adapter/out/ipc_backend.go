package out

import (
	"context"

	"recstudio/internal/modules/export/domain"
	exportout "recstudio/internal/modules/export/port/out"
	"recstudio/internal/platform/ipc"
)

type IPCBackend struct {
	socketPath string
}

func NewIPCBackend(socketPath string) exportout.Backend {
	return &IPCBackend{socketPath: socketPath}
}

type startExportReq struct {
	ProjectID string
	Profile   domain.Profile
}

type startExportResp struct {
	TaskID string
}

type taskReq struct {
	TaskID string
}

type retryExportResp struct {
	TaskID string
}

type taskStatusResp struct {
	Update domain.Update
}

func (b *IPCBackend) StartExport(ctx context.Context, projectID string, profile domain.Profile) (string, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return "", err
	}
	defer client.Close()
	resp := startExportResp{}
	if err := client.Call("Studio.StartExport", startExportReq{ProjectID: projectID, Profile: profile}, &resp); err != nil {
		return "", err
	}
	return resp.TaskID, nil
}

func (b *IPCBackend) RetryExport(ctx context.Context, taskID string) (string, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return "", err
	}
	defer client.Close()
	resp := retryExportResp{}
	if err := client.Call("Studio.RetryExport", taskReq{TaskID: taskID}, &resp); err != nil {
		return "", err
	}
	return resp.TaskID, nil
}

func (b *IPCBackend) TaskStatus(ctx context.Context, taskID string) (domain.Update, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return domain.Update{}, err
	}
	defer client.Close()
	resp := taskStatusResp{}
	if err := client.Call("Studio.ExportTaskStatus", taskReq{TaskID: taskID}, &resp); err != nil {
		return domain.Update{}, err
	}
	return resp.Update, nil
}
