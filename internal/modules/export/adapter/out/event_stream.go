package out

import (
	"context"
	"encoding/json"

	"recstudio/internal/modules/export/domain"
	exportout "recstudio/internal/modules/export/port/out"
	"recstudio/internal/platform/ipc"
)

const progressChannel = "export/progress"

// SocketEventStream subscribes to the daemon's export progress channel.
type SocketEventStream struct {
	socketPath string
}

func NewSocketEventStream(socketPath string) exportout.EventStream {
	return &SocketEventStream{socketPath: socketPath}
}

func (s *SocketEventStream) Subscribe(ctx context.Context, handler func(domain.Update)) error {
	return ipc.Subscribe(ctx, s.socketPath, progressChannel, func(payload json.RawMessage) {
		var update domain.Update
		if err := json.Unmarshal(payload, &update); err != nil {
			return
		}
		handler(update)
	})
}
