package pg

import (
	"context"

	"github.com/google/uuid"

	"opensms/internal/store"
)

// SaveInbound persists a received message as one queue/audit record plus
// one primary record. Both inserts share a transaction so a failure
// leaves neither half behind.
func (s *Store) SaveInbound(ctx context.Context, in store.InboundMessage) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO v_message_queue (message_queue_uuid, domain_uuid, provider_uuid, user_uuid, group_uuid, contact_uuid,
			hostname, message_type, message_direction, message_date, message_from, message_to, message_text, message_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'inbound',$9,$10,$11,$12,$13)
	`, uuid.NewString(), nullIfEmpty(in.DomainUUID), nullIfEmpty(in.ProviderUUID), nullIfEmpty(in.UserUUID),
		nullIfEmpty(in.GroupUUID), nullIfEmpty(in.ContactUUID), in.Hostname, nullIfEmpty(in.Type), in.Now,
		in.From, in.To, in.Text, string(in.RawJSON))
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO v_messages (message_uuid, domain_uuid, provider_uuid, user_uuid, group_uuid, contact_uuid,
			hostname, message_type, message_direction, message_date, message_read, message_from, message_to, message_text, message_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'inbound',$9,false,$10,$11,$12,$13)
	`, in.MessageUUID, nullIfEmpty(in.DomainUUID), nullIfEmpty(in.ProviderUUID), nullIfEmpty(in.UserUUID),
		nullIfEmpty(in.GroupUUID), nullIfEmpty(in.ContactUUID), in.Hostname, nullIfEmpty(in.Type), in.Now,
		in.From, in.To, in.Text, string(in.RawJSON))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
