package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

type JSONRPCServer struct{}

func NewJSONRPCServer() studioout.IPCServer {
	return &JSONRPCServer{}
}

type rpcHandler struct {
	h studioout.IPCHandler
}

type startRecordingReq struct {
	Profile projectdomain.RecordingProfile
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

type projectReq struct {
	ProjectID string
}

type loadProjectResp struct {
	Manifest projectdomain.Manifest
}

type patchTimelineReq struct {
	ProjectID string
	Patch     projectdomain.TimelinePatch
}

type patchCameraMotionReq struct {
	ProjectID string
	Patch     projectdomain.CameraMotionPatch
}

type listProjectsResp struct {
	Projects []projectdomain.ListItem
}

type updateTitleReq struct {
	ProjectID string
	Title     string
}

type recoverResp struct {
	Projects []projectdomain.Recoverable
}

type startExportReq struct {
	ProjectID string
	Profile   projectdomain.ExportProfile
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
	Update domain.TaskReport
}

type devicesResp struct {
	Devices []domain.Device
}

type capabilityResp struct {
	Capability domain.Capability
}

type empty struct{}

// rpcError re-encodes an AppError as JSON inside the error string. net/rpc
// flattens server errors to text; clients recover the structured form by
// scanning for the embedded JSON object.
func rpcError(err error) error {
	if err == nil {
		return nil
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	raw, marshalErr := json.Marshal(appErr)
	if marshalErr != nil {
		return err
	}
	return errors.New(string(raw))
}

func (s *rpcHandler) StartRecording(req startRecordingReq, resp *startRecordingResp) error {
	sessionID, err := s.h.StartRecording(context.Background(), req.Profile)
	if err != nil {
		return rpcError(err)
	}
	resp.SessionID = sessionID
	return nil
}

func (s *rpcHandler) PauseRecording(req sessionReq, _ *empty) error {
	return rpcError(s.h.PauseRecording(context.Background(), req.SessionID))
}

func (s *rpcHandler) ResumeRecording(req sessionReq, _ *empty) error {
	return rpcError(s.h.ResumeRecording(context.Background(), req.SessionID))
}

func (s *rpcHandler) StopRecording(req sessionReq, resp *stopRecordingResp) error {
	projectID, err := s.h.StopRecording(context.Background(), req.SessionID)
	if err != nil {
		return rpcError(err)
	}
	resp.ProjectID = projectID
	return nil
}

func (s *rpcHandler) LoadProject(req projectReq, resp *loadProjectResp) error {
	manifest, err := s.h.LoadProject(context.Background(), req.ProjectID)
	if err != nil {
		return rpcError(err)
	}
	resp.Manifest = manifest
	return nil
}

func (s *rpcHandler) PatchTimeline(req patchTimelineReq, _ *empty) error {
	return rpcError(s.h.PatchTimeline(context.Background(), req.ProjectID, req.Patch))
}

func (s *rpcHandler) PatchCameraMotion(req patchCameraMotionReq, _ *empty) error {
	return rpcError(s.h.PatchCameraMotion(context.Background(), req.ProjectID, req.Patch))
}

func (s *rpcHandler) ListProjects(_ empty, resp *listProjectsResp) error {
	projects, err := s.h.ListProjects(context.Background())
	if err != nil {
		return rpcError(err)
	}
	resp.Projects = projects
	return nil
}

func (s *rpcHandler) UpdateProjectTitle(req updateTitleReq, _ *empty) error {
	return rpcError(s.h.UpdateProjectTitle(context.Background(), req.ProjectID, req.Title))
}

func (s *rpcHandler) DeleteProject(req projectReq, _ *empty) error {
	return rpcError(s.h.DeleteProject(context.Background(), req.ProjectID))
}

func (s *rpcHandler) RecoverProjects(_ empty, resp *recoverResp) error {
	projects, err := s.h.RecoverProjects(context.Background())
	if err != nil {
		return rpcError(err)
	}
	resp.Projects = projects
	return nil
}

func (s *rpcHandler) StartExport(req startExportReq, resp *startExportResp) error {
	taskID, err := s.h.StartExport(context.Background(), req.ProjectID, req.Profile)
	if err != nil {
		return rpcError(err)
	}
	resp.TaskID = taskID
	return nil
}

func (s *rpcHandler) RetryExport(req taskReq, resp *retryExportResp) error {
	taskID, err := s.h.RetryExport(context.Background(), req.TaskID)
	if err != nil {
		return rpcError(err)
	}
	resp.TaskID = taskID
	return nil
}

func (s *rpcHandler) ExportTaskStatus(req taskReq, resp *taskStatusResp) error {
	report, err := s.h.ExportTaskStatus(context.Background(), req.TaskID)
	if err != nil {
		return rpcError(err)
	}
	resp.Update = report
	return nil
}

func (s *rpcHandler) ListDevices(_ empty, resp *devicesResp) error {
	devices, err := s.h.ListDevices(context.Background())
	if err != nil {
		return rpcError(err)
	}
	resp.Devices = devices
	return nil
}

func (s *rpcHandler) Capability(_ empty, resp *capabilityResp) error {
	capability, err := s.h.Capability(context.Background())
	if err != nil {
		return rpcError(err)
	}
	resp.Capability = capability
	return nil
}

func (s *rpcHandler) Shutdown(_ empty, _ *empty) error {
	return rpcError(s.h.Shutdown(context.Background()))
}

func (s *JSONRPCServer) Serve(ctx context.Context, socketPath string, handler studioout.IPCHandler) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("create ipc dir: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale ipc socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen ipc socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("chmod ipc socket: %w", err)
	}
	defer ln.Close()

	rpcSrv := rpc.NewServer()
	if err := rpcSrv.RegisterName("Studio", &rpcHandler{h: handler}); err != nil {
		return fmt.Errorf("register ipc handler: %w", err)
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}
		go rpcSrv.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}
