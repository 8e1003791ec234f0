package pipeline

import (
	"context"
	"log/slog"

	"opensms/internal/settings"
)

// Consumer supplies the raw inbound bytes for the current request. A
// consumer with nothing to offer returns an empty slice.
type Consumer interface {
	Name() string
	Consume(ctx context.Context, st settings.Source) ([]byte, error)
}

// ConsumerChain evaluates consumers in registration order and keeps the
// first non-empty result; an earlier consumer masks anything later ones
// might produce. The result is always wrapped in a Payload, empty or not.
type ConsumerChain struct {
	consumers []Consumer
}

func NewConsumerChain(consumers ...Consumer) *ConsumerChain {
	return &ConsumerChain{consumers: consumers}
}

func (c *ConsumerChain) Payload(ctx context.Context, st settings.Source) *Payload {
	for _, consumer := range c.consumers {
		raw, err := consumer.Consume(ctx, st)
		if err != nil {
			// A broken source must not mask a later one.
			slog.Error("consumer failed", "err", err, "consumer", consumer.Name())
			continue
		}
		if len(raw) > 0 {
			return NewPayload(raw)
		}
	}
	return NewPayload(nil)
}
