// Package bandwidth adapts Bandwidth's inbound messaging callbacks to
// the canonical message model. Admission is by source network against
// Bandwidth's published callback ranges, kept in the access control
// store so operators can extend them without a deploy.
package bandwidth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"opensms/internal/cidr"
	"opensms/internal/domain"
	"opensms/internal/pipeline"
	"opensms/internal/settings"
	"opensms/internal/store"
)

const (
	ProviderName  = "bandwidth"
	ProviderLabel = "Bandwidth SMS"
	ProviderUUID  = "a1b2c3d4-e5f6-7890-abcd-ef1234567890"
	Description   = "Bandwidth SMS Gateway Integration"

	ACLUUID = "4a43c9e0-69de-4c6d-bfa4-4cb591f8c1e3"
)

// CallbackCIDRs are Bandwidth's published callback source addresses,
// installed as allow blocks by AppDefaults.
var CallbackCIDRs = []string{
	"3.82.123.96/32",
	"18.233.250.246/32",
	"52.72.24.132/32",
}

// callbackEvent is the carrier's wire shape: a top-level array whose
// first element wraps the message. Text is a pointer so an absent field
// is distinguishable from an empty one.
type callbackEvent struct {
	Type    string `json:"type"`
	Message struct {
		To    []string `json:"to"`
		From  string   `json:"from"`
		Text  *string  `json:"text"`
		Media []string `json:"media"`
		Time  string   `json:"time"`
	} `json:"message"`
}

type Adapter struct {
	ACL   pipeline.ACLStore
	Media *MediaClient
}

func New(acl pipeline.ACLStore, media *MediaClient) *Adapter {
	return &Adapter{ACL: acl, Media: media}
}

func (a *Adapter) Name() string         { return ProviderName }
func (a *Adapter) ProviderUUID() string { return ProviderUUID }

// Admit checks the caller address against this adapter's allow blocks.
// Any store failure denies admission.
func (a *Adapter) Admit(ctx context.Context, _ settings.Source, ip string) bool {
	blocks, err := a.ACL.ListACLBlocks(ctx, ACLUUID)
	if err != nil {
		slog.Error("bandwidth acl lookup failed", "err", err, "ip", ip)
		return false
	}
	for _, b := range blocks {
		if cidr.Contains(b.CIDR, ip) {
			return true
		}
	}
	return false
}

// Receive parses the callback payload into a fresh message. An empty
// payload or a payload without message events is not an error. Malformed
// JSON is: the carrier is speaking a shape we do not understand and the
// request should fail loudly for that adapter.
func (a *Adapter) Receive(ctx context.Context, st settings.Source, payload *pipeline.Payload) (*domain.Message, error) {
	if payload == nil || payload.IsEmpty() {
		return nil, nil
	}

	var events []callbackEvent
	if err := json.Unmarshal(payload.Raw(), &events); err != nil {
		return nil, fmt.Errorf("invalid bandwidth payload: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	ev := events[0]

	msg := domain.New(uuid.NewString(), ProviderUUID)
	msg.ReceivedData = payload.Raw()
	msg.Time = ev.Message.Time
	msg.FromNumber = ev.Message.From
	if len(ev.Message.To) > 0 {
		msg.ToNumber = ev.Message.To[0]
	}
	if ev.Message.Text != nil {
		msg.SMS = *ev.Message.Text
		msg.Type = "sms"
	}
	if len(ev.Message.Media) > 0 {
		msg.MMS = a.fetchMedia(ctx, st, ev.Message.Media)
		// Media wins when both are present.
		msg.Type = "mms"
	}
	return msg, nil
}

// fetchMedia downloads each referenced attachment. One bad URL is
// logged and skipped; it does not fail the message.
func (a *Adapter) fetchMedia(ctx context.Context, st settings.Source, urls []string) []domain.MediaPart {
	username := st.Get(ctx, ProviderName, "callback_user_id", "")
	password := st.Get(ctx, ProviderName, "callback_password", "")

	var parts []domain.MediaPart
	for _, u := range urls {
		part, err := a.Media.Fetch(ctx, u, username, password)
		if err != nil {
			slog.Error("bandwidth media fetch failed", "err", err, "url", u)
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// AppDefaults creates this adapter's access control set and allow blocks
// when absent, and records its configurable options. Safe to run on
// every bootstrap.
func (a *Adapter) AppDefaults(ctx context.Context, db pipeline.BootstrapStore) error {
	exists, err := db.ACLExists(ctx, ACLUUID)
	if err != nil {
		return fmt.Errorf("bandwidth acl exists: %w", err)
	}
	if !exists {
		if err := db.CreateACL(ctx, ACLUUID, ProviderLabel, Description); err != nil {
			return fmt.Errorf("bandwidth acl create: %w", err)
		}
		if err := db.AddACLBlocks(ctx, ACLUUID, CallbackCIDRs, ProviderLabel); err != nil {
			return fmt.Errorf("bandwidth acl blocks: %w", err)
		}
	}
	return db.UpsertDefaultSettings(ctx, a.AppConfig())
}

// AppConfig declares the options the host configuration UI offers for
// this adapter.
func (a *Adapter) AppConfig() []store.DefaultSetting {
	return []store.DefaultSetting{
		{SettingUUID: "c01ef185-72b8-4632-9226-df4dc7658862", Category: ProviderName, Subcategory: "account_id", Name: "text"},
		{SettingUUID: "e853d3af-ecf0-4178-8923-f4ad622d721c", Category: ProviderName, Subcategory: "callback_user_id", Name: "text"},
		{SettingUUID: "67d9116a-ea25-4494-93c1-ad5f56da968b", Category: ProviderName, Subcategory: "callback_password", Name: "text"},
		{SettingUUID: "9922e56a-ef2a-4cd1-bd66-37fe8e8e3392", Category: ProviderName, Subcategory: "application_id", Name: "text"},
	}
}
