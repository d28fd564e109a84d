package out

import (
	"context"

	"recstudio/internal/modules/recording/domain"
	recordingout "recstudio/internal/modules/recording/port/out"
	"recstudio/internal/platform/ipc"
)

type IPCBackend struct {
	socketPath string
}

func NewIPCBackend(socketPath string) recordingout.Backend {
	return &IPCBackend{socketPath: socketPath}
}

type startRecordingReq struct {
	Profile domain.Profile
}

type startRecordingResp struct {
	SessionID string
}

type sessionReq struct {
	SessionID string
}

type stopRecordingResp struct {
	ProjectID string
}

type empty struct{}

func (b *IPCBackend) StartRecording(ctx context.Context, profile domain.Profile) (string, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return "", err
	}
	defer client.Close()
	resp := startRecordingResp{}
	if err := client.Call("Studio.StartRecording", startRecordingReq{Profile: profile}, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (b *IPCBackend) PauseRecording(ctx context.Context, sessionID string) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.PauseRecording", sessionReq{SessionID: sessionID}, &empty{})
}

func (b *IPCBackend) ResumeRecording(ctx context.Context, sessionID string) error {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Studio.ResumeRecording", sessionReq{SessionID: sessionID}, &empty{})
}

func (b *IPCBackend) StopRecording(ctx context.Context, sessionID string) (string, error) {
	client, err := ipc.Dial(ctx, b.socketPath)
	if err != nil {
		return "", err
	}
	defer client.Close()
	resp := stopRecordingResp{}
	if err := client.Call("Studio.StopRecording", sessionReq{SessionID: sessionID}, &resp); err != nil {
		return "", err
	}
	return resp.ProjectID, nil
}
