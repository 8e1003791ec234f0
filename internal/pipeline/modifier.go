package pipeline

import (
	"context"
	"fmt"
	"sort"

	"opensms/internal/domain"
	"opensms/internal/observability"
	"opensms/internal/settings"
)

// Modifier is one enrichment step. Apply mutates the message in place;
// Priority orders the chain (lower runs earlier). Later modifiers may
// depend on attributes set by earlier ones, so the chain never reorders
// or parallelizes.
type Modifier interface {
	Name() string
	Apply(ctx context.Context, st settings.Source, msg *domain.Message) error
	Priority() int
}

// ModifierChain is a composite Modifier holding its members in stable
// priority order. The first member error aborts the remainder of the
// chain for this message; mutations already applied are not rolled back.
type ModifierChain struct {
	mods []Modifier
}

func NewModifierChain(mods ...Modifier) *ModifierChain {
	sorted := make([]Modifier, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &ModifierChain{mods: sorted}
}

func (c *ModifierChain) Name() string { return "modifier_chain" }

// Priority of the composite is its earliest member's, so chains nest.
func (c *ModifierChain) Priority() int {
	if len(c.mods) == 0 {
		return 0
	}
	return c.mods[0].Priority()
}

func (c *ModifierChain) Apply(ctx context.Context, st settings.Source, msg *domain.Message) error {
	for _, mod := range c.mods {
		if err := mod.Apply(ctx, st, msg); err != nil {
			observability.ModifierErrors.WithLabelValues(mod.Name()).Inc()
			return fmt.Errorf("modifier %s: %w", mod.Name(), err)
		}
	}
	return nil
}

// Modifiers exposes the sorted member order.
func (c *ModifierChain) Modifiers() []Modifier {
	out := make([]Modifier, len(c.mods))
	copy(out, c.mods)
	return out
}
