// Package consumers provides the built-in raw payload sources: the HTTP
// request body, an SQS queue, and a spool file. Deployments register the
// ones they use, in the order they should win.
package consumers

import (
	"context"

	"opensms/internal/settings"
)

type bodyKey struct{}

// WithRequestBody attaches the already-read HTTP request body to the
// context so the body consumer can hand it to the chain. Request state is
// threaded explicitly; consumers never read from process globals.
func WithRequestBody(ctx context.Context, raw []byte) context.Context {
	return context.WithValue(ctx, bodyKey{}, raw)
}

// HTTPBody yields the inbound HTTP request body for the current request.
type HTTPBody struct{}

func (HTTPBody) Name() string { return "http_body" }

func (HTTPBody) Consume(ctx context.Context, _ settings.Source) ([]byte, error) {
	raw, _ := ctx.Value(bodyKey{}).([]byte)
	return raw, nil
}
