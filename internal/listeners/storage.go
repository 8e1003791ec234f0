// Package listeners holds the terminal consumers of a fully modified
// message: persistence and switch signaling.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"opensms/internal/domain"
	"opensms/internal/settings"
	"opensms/internal/store"
)

// MessageSaver is the persistence slice the storage listener writes to.
type MessageSaver interface {
	SaveInbound(ctx context.Context, in store.InboundMessage) error
}

// Storage persists each message as a queue record plus a primary record.
// The write is the system's sole durability point; failures surface to
// the fan-out.
type Storage struct {
	Store    MessageSaver
	Hostname string
}

func NewStorage(st MessageSaver) *Storage {
	host, _ := os.Hostname()
	return &Storage{Store: st, Hostname: host}
}

func (s *Storage) Name() string { return "storage_writer" }

func (s *Storage) OnMessage(ctx context.Context, _ settings.Source, msg *domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serialize message %s: %w", msg.UUID(), err)
	}
	return s.Store.SaveInbound(ctx, store.InboundMessage{
		MessageUUID:  msg.UUID(),
		DomainUUID:   msg.DomainUUID,
		ProviderUUID: msg.ProviderUUID(),
		UserUUID:     msg.UserUUID,
		GroupUUID:    msg.GroupUUID,
		ContactUUID:  msg.ContactUUID,
		Hostname:     s.Hostname,
		Type:         msg.Type,
		From:         msg.FromNumber,
		To:           msg.ToNumber,
		Text:         msg.SMS,
		RawJSON:      raw,
		Now:          time.Now().UTC(),
	})
}
