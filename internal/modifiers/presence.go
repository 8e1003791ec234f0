package modifiers

import (
	"context"
	"log/slog"
	"strings"

	"opensms/internal/domain"
	"opensms/internal/settings"
)

const notRegistered = "error/user_not_registered"

// SwitchCommander is the live signaling channel the presence modifier
// queries for current registrations.
type SwitchCommander interface {
	Connected() bool
	Command(ctx context.Context, cmd string) (string, error)
}

// Presence asks the switch which resolved extensions currently hold a
// registration. Registered extensions become broadcast destinations;
// the rest are recorded as offline. Routing enrichment is best-effort:
// an unreachable switch leaves the message untouched.
type Presence struct {
	Switch SwitchCommander
}

func (Presence) Name() string  { return "presence" }
func (Presence) Priority() int { return 20 }

func (m Presence) Apply(ctx context.Context, _ settings.Source, msg *domain.Message) error {
	if m.Switch == nil || !m.Switch.Connected() {
		return nil
	}

	for _, ext := range msg.Extensions {
		target := ext.Extension + "@" + ext.DomainName
		response, err := m.Switch.Command(ctx, "api sofia_contact "+target)
		if err != nil {
			slog.Warn("presence lookup failed", "err", err, "target", target)
			continue
		}
		if strings.TrimSpace(response) == notRegistered {
			msg.OfflineDestinations = append(msg.OfflineDestinations, target)
			continue
		}
		msg.BroadcastDestinations = append(msg.BroadcastDestinations, target)
		// Contact strings look like sofia/internal/sip:100@host; the
		// middle segment names the profile the registration lives on.
		if parts := strings.Split(response, "/"); len(parts) >= 2 && parts[1] != "" {
			msg.SIPProfile = parts[1]
		}
	}
	return nil
}
