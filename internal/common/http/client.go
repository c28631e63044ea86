// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is an outbound HTTP client with an optional token-bucket limiter.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewRateLimitedClient allows rps requests per second with the given burst.
// rps <= 0 disables limiting.
func NewRateLimitedClient(timeout time.Duration, rps float64, burst int) *Client {
	c := NewClient(timeout)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext waits for a limiter token, then sends req bound to ctx.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return c.httpClient.Do(req.WithContext(ctx))
}
