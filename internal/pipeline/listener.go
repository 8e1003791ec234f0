package pipeline

import (
	"context"
	"errors"
	"fmt"

	"opensms/internal/domain"
	"opensms/internal/observability"
	"opensms/internal/settings"
)

// Listener is a terminal consumer notified once a message has passed
// through all modifiers. Listeners must not assume exclusive access to
// shared downstream resources; concurrent requests fan out concurrently.
type Listener interface {
	Name() string
	OnMessage(ctx context.Context, st settings.Source, msg *domain.Message) error
}

// ListenerFanout notifies every listener in registration order. Failures
// are isolated per listener: a storage error must not silently skip
// switch delivery, and vice versa. All errors are joined and surfaced to
// the caller.
type ListenerFanout struct {
	listeners []Listener
}

func NewListenerFanout(listeners ...Listener) *ListenerFanout {
	return &ListenerFanout{listeners: listeners}
}

func (f *ListenerFanout) Name() string { return "listener_fanout" }

func (f *ListenerFanout) OnMessage(ctx context.Context, st settings.Source, msg *domain.Message) error {
	var errs []error
	for _, l := range f.listeners {
		if err := l.OnMessage(ctx, st, msg); err != nil {
			observability.ListenerResults.WithLabelValues(l.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("listener %s: %w", l.Name(), err))
			continue
		}
		observability.ListenerResults.WithLabelValues(l.Name(), "ok").Inc()
	}
	return errors.Join(errs...)
}
