package bandwidth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"opensms/internal/domain"
	"opensms/internal/observability"
)

// maxMediaBytes caps a single MMS attachment read.
const maxMediaBytes = 10 << 20

// MediaClient fetches MMS attachments from the carrier's media host.
// Fetches are rate limited per pod and wrapped in a circuit breaker so a
// struggling media host cannot stall every inbound request.
type MediaClient struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
	Breaker *gobreaker.CircuitBreaker
}

func NewMediaClient(timeout time.Duration, rps float64, burst int) *MediaClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaClient{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
		Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "bandwidth-media",
		}),
	}
}

// Fetch downloads one media URL with the adapter's callback credentials.
func (c *MediaClient) Fetch(ctx context.Context, url, username, password string) (domain.MediaPart, error) {
	start := time.Now()

	if c.Limiter != nil {
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			observability.MediaFetch.WithLabelValues("rate_limited_local").Inc()
			return domain.MediaPart{}, fmt.Errorf("media rate limit: %w", err)
		}
	}

	res, err := c.execute(ctx, url, username, password)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observability.MediaFetch.WithLabelValues("cb_open").Inc()
		return domain.MediaPart{}, err
	}
	if err != nil {
		observability.MediaFetch.WithLabelValues("error").Inc()
		return domain.MediaPart{}, err
	}

	observability.MediaFetch.WithLabelValues("ok").Inc()
	observability.MediaFetchLatency.Observe(time.Since(start).Seconds())
	part := res.(domain.MediaPart)
	part.URL = url
	return part, nil
}

func (c *MediaClient) execute(ctx context.Context, url, username, password string) (any, error) {
	call := func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if username != "" {
			req.SetBasicAuth(username, password)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("media fetch status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
		if err != nil {
			return nil, err
		}
		return domain.MediaPart{
			ContentType: resp.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}

	if c.Breaker == nil {
		return call()
	}
	return c.Breaker.Execute(call)
}
