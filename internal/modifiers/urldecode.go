package modifiers

import (
	"context"
	"net/url"

	"opensms/internal/domain"
	"opensms/internal/settings"
)

// URLDecode unescapes text fields that arrived percent-encoded from the
// transport. A value that does not decode is left untouched rather than
// dropped.
type URLDecode struct{}

func (URLDecode) Name() string  { return "url_decode" }
func (URLDecode) Priority() int { return 5 }

func (URLDecode) Apply(_ context.Context, _ settings.Source, msg *domain.Message) error {
	msg.ToNumber = decode(msg.ToNumber)
	msg.FromNumber = decode(msg.FromNumber)
	msg.SMS = decode(msg.SMS)
	return nil
}

func decode(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return out
}
