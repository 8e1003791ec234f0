package pipeline

import (
	"context"
	"log/slog"

	"opensms/internal/domain"
	"opensms/internal/observability"
	"opensms/internal/settings"
)

// Selector runs admission control and parsing across every registered
// adapter. More than one adapter may admit the same request; each
// successful parse yields an independent message.
type Selector struct {
	Adapters []Adapter
}

// Messages returns the ordered sequence of valid messages produced for
// this request. A parse failure is scoped to its adapter; sibling
// adapters still run. Messages missing either envelope number are
// discarded before they can reach the modifier or listener stages.
func (s *Selector) Messages(ctx context.Context, st settings.Source, ip string, payload *Payload) []*domain.Message {
	var messages []*domain.Message
	for _, adapter := range s.Adapters {
		if !adapter.Admit(ctx, st, ip) {
			continue
		}
		observability.AdapterAdmitted.WithLabelValues(adapter.Name()).Inc()

		msg, err := adapter.Receive(ctx, st, payload)
		if err != nil {
			slog.Error("adapter receive failed", "err", err, "adapter", adapter.Name(), "ip", ip)
			observability.MessagesParsed.WithLabelValues(adapter.Name(), "error").Inc()
			continue
		}
		if msg == nil {
			// Not a message event (e.g. a carrier verification callback).
			observability.MessagesParsed.WithLabelValues(adapter.Name(), "skipped").Inc()
			continue
		}
		if !msg.Valid() {
			slog.Warn("message missing envelope numbers, discarded",
				"adapter", adapter.Name(),
				"to", msg.ToNumber,
				"from", msg.FromNumber,
			)
			observability.MessagesParsed.WithLabelValues(adapter.Name(), "discarded").Inc()
			continue
		}
		observability.MessagesParsed.WithLabelValues(adapter.Name(), "ok").Inc()
		messages = append(messages, msg)
	}
	return messages
}
