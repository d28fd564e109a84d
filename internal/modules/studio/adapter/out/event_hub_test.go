package out

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"recstudio/internal/modules/studio/domain"
	"recstudio/internal/platform/ipc"
)

func TestEventHubDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	socketPath := filepath.Join(t.TempDir(), "events.sock")
	hub := NewEventHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = hub.Serve(ctx, socketPath)
	}()

	received := make(chan domain.RecordingStatusEvent, 1)
	go func() {
		_ = ipc.Subscribe(ctx, socketPath, domain.RecordingStatusChannel, func(payload json.RawMessage) {
			var event domain.RecordingStatusEvent
			if json.Unmarshal(payload, &event) == nil {
				select {
				case received <- event:
				default:
				}
			}
		})
	}()

	// Publish until the subscriber is connected and sees an event.
	event := domain.RecordingStatusEvent{SessionID: "s1", Status: "recording", DurationMS: 1000}
	deadline := time.After(2 * time.Second)
	for {
		hub.Publish(domain.RecordingStatusChannel, event)
		select {
		case got := <-received:
			if got.SessionID != "s1" || got.Status != "recording" {
				t.Fatalf("got = %+v", got)
			}
			return
		case <-deadline:
			t.Fatal("subscriber never received the event")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEventHubFiltersOtherChannels(t *testing.T) {
	t.Parallel()

	socketPath := filepath.Join(t.TempDir(), "events.sock")
	hub := NewEventHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = hub.Serve(ctx, socketPath)
	}()

	recording := make(chan struct{}, 1)
	exporting := make(chan struct{}, 4)
	go func() {
		_ = ipc.Subscribe(ctx, socketPath, domain.RecordingStatusChannel, func(json.RawMessage) {
			select {
			case recording <- struct{}{}:
			default:
			}
		})
	}()
	go func() {
		_ = ipc.Subscribe(ctx, socketPath, domain.ExportProgressChannel, func(json.RawMessage) {
			select {
			case exporting <- struct{}{}:
			default:
			}
		})
	}()

	deadline := time.After(2 * time.Second)
	for {
		hub.Publish(domain.ExportProgressChannel, domain.TaskReport{TaskID: "t1", Status: "running", Progress: 50})
		select {
		case <-exporting:
			select {
			case <-recording:
				t.Fatal("recording subscriber saw an export event")
			default:
			}
			return
		case <-deadline:
			t.Fatal("export subscriber never received the event")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
