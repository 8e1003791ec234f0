package pipeline

import (
	"context"

	"opensms/internal/domain"
	"opensms/internal/settings"
	"opensms/internal/store"
)

// ACLStore is the slice of the persistence boundary adapters use for
// admission control.
type ACLStore interface {
	ACLExists(ctx context.Context, aclUUID string) (bool, error)
	CreateACL(ctx context.Context, aclUUID, name, description string) error
	ListACLBlocks(ctx context.Context, aclUUID string) ([]store.ACLBlock, error)
	AddACLBlocks(ctx context.Context, aclUUID string, cidrs []string, description string) error
}

// BootstrapStore is what an adapter's AppDefaults hook may touch.
type BootstrapStore interface {
	ACLStore
	UpsertDefaultSettings(ctx context.Context, defaults []store.DefaultSetting) error
}

// Adapter translates one carrier's webhook payload into a canonical
// message. Admit decides by source address whether this adapter should
// handle the request; Receive parses the shared payload. AppDefaults and
// AppConfig are deployment bootstrap hooks, invoked outside the request
// path.
type Adapter interface {
	Name() string
	ProviderUUID() string

	// Admit must fail closed: any lookup or parse problem means false.
	Admit(ctx context.Context, st settings.Source, ip string) bool

	// Receive returns (nil, nil) when the payload is empty or is not a
	// supported event, and an error for unparseable payloads.
	Receive(ctx context.Context, st settings.Source, payload *Payload) (*domain.Message, error)

	// AppDefaults idempotently creates this adapter's access control
	// set and allow blocks if absent.
	AppDefaults(ctx context.Context, db BootstrapStore) error

	// AppConfig declares the adapter's configurable options, nil if none.
	AppConfig() []store.DefaultSetting
}
