package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"opensms/internal/settings"
)

// Pipeline wires the four stages for one deployment. Run drives a single
// inbound request end to end: acquire raw bytes, select adapters by
// caller address, then modify and fan out each produced message.
type Pipeline struct {
	Consumers *ConsumerChain
	Selector  *Selector
	Modifiers *ModifierChain
	Listeners *ListenerFanout
}

// Run processes one request. Zero produced messages is a successful
// outcome (e.g. a carrier verification callback). A modifier failure
// drops that message before notification; listener errors are collected
// across messages and returned joined.
func (p *Pipeline) Run(ctx context.Context, st settings.Source, ip string) error {
	payload := p.Consumers.Payload(ctx, st)
	messages := p.Selector.Messages(ctx, st, ip, payload)

	var errs []error
	for _, msg := range messages {
		if err := p.Modifiers.Apply(ctx, st, msg); err != nil {
			slog.Error("modifier chain aborted", "err", err, "message_uuid", msg.UUID())
			errs = append(errs, err)
			continue
		}
		if err := p.Listeners.OnMessage(ctx, st, msg); err != nil {
			slog.Error("listener fan-out failed", "err", err, "message_uuid", msg.UUID())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
