package modifiers

import (
	"context"
	"fmt"

	"opensms/internal/domain"
	"opensms/internal/settings"
)

// ExtensionLister fetches a user's enabled endpoints across domains.
type ExtensionLister interface {
	UserExtensions(ctx context.Context, userUUID string) ([]domain.Extension, error)
}

// Extensions accumulates the enabled extensions of every resolved user.
// Depends on the identity modifier having populated UserUUIDs.
type Extensions struct {
	Directory ExtensionLister
}

func (Extensions) Name() string  { return "extensions" }
func (Extensions) Priority() int { return 10 }

func (m Extensions) Apply(ctx context.Context, _ settings.Source, msg *domain.Message) error {
	for _, userUUID := range msg.UserUUIDs {
		exts, err := m.Directory.UserExtensions(ctx, userUUID)
		if err != nil {
			return fmt.Errorf("extension lookup for user %s: %w", userUUID, err)
		}
		msg.Extensions = append(msg.Extensions, exts...)
	}
	return nil
}
