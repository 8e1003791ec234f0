package modifiers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"opensms/internal/domain"
	"opensms/internal/settings"
	"opensms/internal/store"
)

// DestinationFinder is the directory lookup the identity modifier needs.
type DestinationFinder interface {
	FindDestination(ctx context.Context, number string) (store.Destination, bool, error)
}

// Destinations resolves the dialed number to a directory destination and
// copies its identity onto the message. A number with no enabled
// destination leaves the message unrouted but still deliverable to
// storage.
type Destinations struct {
	Directory DestinationFinder
}

func (Destinations) Name() string  { return "destinations" }
func (Destinations) Priority() int { return 5 }

func (m Destinations) Apply(ctx context.Context, _ settings.Source, msg *domain.Message) error {
	dest, found, err := m.Directory.FindDestination(ctx, msg.ToNumber)
	if err != nil {
		return fmt.Errorf("destination lookup %q: %w", msg.ToNumber, err)
	}
	if !found {
		return nil
	}

	if isUUID(dest.DestinationUUID) {
		msg.DestinationUUID = dest.DestinationUUID
	}
	if dest.UserUUID != "" {
		msg.UserUUID = dest.UserUUID
		msg.UserUUIDs = append(msg.UserUUIDs, dest.UserUUID)
	}
	if isUUID(dest.GroupUUID) {
		msg.GroupUUID = dest.GroupUUID
	}
	if isUUID(dest.DomainUUID) {
		msg.DomainUUID = dest.DomainUUID
	}
	return nil
}

func isUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
