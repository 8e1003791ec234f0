// Package modifiers holds the built-in enrichment steps applied to every
// inbound message, ordered by priority: number normalization, transport
// decoding, directory identity resolution, extension resolution, and
// live presence routing.
package modifiers

import (
	"context"
	"strings"

	"opensms/internal/domain"
	"opensms/internal/settings"
)

// RemovePlus strips a single leading + from the envelope numbers. The
// backing directory stores numbers without it. Runs first so every later
// lookup sees the stored form.
type RemovePlus struct{}

func (RemovePlus) Name() string  { return "remove_plus" }
func (RemovePlus) Priority() int { return 0 }

func (RemovePlus) Apply(_ context.Context, _ settings.Source, msg *domain.Message) error {
	msg.ToNumber = strings.TrimPrefix(msg.ToNumber, "+")
	msg.FromNumber = strings.TrimPrefix(msg.FromNumber, "+")
	return nil
}
