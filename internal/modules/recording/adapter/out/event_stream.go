package out

import (
	"context"
	"encoding/json"

	"recstudio/internal/modules/recording/domain"
	recordingout "recstudio/internal/modules/recording/port/out"
	"recstudio/internal/platform/ipc"
)

const statusChannel = "recording/status"

// SocketEventStream subscribes to the daemon's recording status channel.
type SocketEventStream struct {
	socketPath string
}

func NewSocketEventStream(socketPath string) recordingout.EventStream {
	return &SocketEventStream{socketPath: socketPath}
}

func (s *SocketEventStream) Subscribe(ctx context.Context, handler func(domain.StatusEvent)) error {
	return ipc.Subscribe(ctx, s.socketPath, statusChannel, func(payload json.RawMessage) {
		var event domain.StatusEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return
		}
		handler(event)
	})
}
