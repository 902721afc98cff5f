package simenv

import (
	"net/http"

	"golang.org/x/time/rate"
	"gopkg.in/inconshreveable/log15.v2"
)

// Option is a parameter for creating a client.
type Option interface {
	apply(c *Client)
}

type optionFunc func(c *Client)

func (fn optionFunc) apply(c *Client) { fn(c) }

// WithHTTPClient sets the HTTP client used for API calls. Timeouts and proxies
// are configured there.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	})
}

// WithLogger sets the logger. The default is log15.Root().
func WithLogger(l log15.Logger) Option {
	return optionFunc(func(c *Client) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithRateLimit paces API calls to at most perSecond calls per second, with the
// given burst. Calls wait for the limiter and fail when their context ends
// first. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return optionFunc(func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	})
}

// WithRequestID makes the client send a random X-Request-Id header with every
// call, so calls can be found in the simulator log.
func WithRequestID() Option {
	return optionFunc(func(c *Client) {
		c.requestID = true
	})
}

// Bundle combines options.
func Bundle(option ...Option) Option {
	return optionFunc(func(c *Client) {
		for _, o := range option {
			o.apply(c)
		}
	})
}
