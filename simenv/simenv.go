package simenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"gopkg.in/inconshreveable/log15.v2"
)

// EnvVar is the environment variable read by New.
const EnvVar = "SERVERLESS_SIM"

// Only this much of an error response body is kept.
const maxErrorBody = 1024

// Client wraps the HTTP API of the serverless simulator.
// It is safe for concurrent use.
type Client struct {
	url       string
	http      *http.Client
	logger    log15.Logger
	limiter   *rate.Limiter
	requestID bool
}

// New looks up the simulator URL using the SERVERLESS_SIM environment variable
// and connects to it. It will panic if SERVERLESS_SIM is not set.
func New(opts ...Option) *Client {
	url, isSet := os.LookupEnv(EnvVar)
	if !isSet {
		panic(EnvVar + " environment variable not set")
	}
	return NewAt(url, opts...)
}

// NewAt creates a client for the simulator API at the given base URL.
func NewAt(url string, opts ...Option) *Client {
	c := &Client{
		url:    strings.TrimRight(url, "/"),
		http:   http.DefaultClient,
		logger: log15.Root(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// URL returns the base URL of the simulator.
func (c *Client) URL() string {
	return c.url
}

// call posts req to the given api and returns the raw response body.
// Only 2xx responses are returned; everything else is an error.
func (c *Client) call(ctx context.Context, api string, req interface{}) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: can't encode request", api)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, api)
		}
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/"+api, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, api)
	}
	hreq.Header.Set("content-type", "application/json")
	logger := c.logger.New("api", api)
	if c.requestID {
		id := uuid.NewString()
		hreq.Header.Set("X-Request-Id", id)
		logger = logger.New("reqid", id)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		logger.Debug("simulator call failed", "err", err)
		return nil, errors.Wrap(err, api)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) // best effort
		logger.Debug("simulator call rejected", "status", resp.StatusCode)
		return nil, newHTTPError(api, resp.StatusCode, msg)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: can't read response", api)
	}
	logger.Debug("simulator call", "status", resp.StatusCode, "time", time.Since(start))
	return data, nil
}

// HTTPError is returned for responses with a non-2xx status.
type HTTPError struct {
	API        string
	StatusCode int
	Message    string
}

func newHTTPError(api string, status int, body []byte) *HTTPError {
	err := &HTTPError{API: api, StatusCode: status}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		err.Message = apiErr.Error
	} else {
		err.Message = strings.TrimSpace(string(body))
	}
	return err
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request failed (status %d)", e.API, e.StatusCode)
	}
	return fmt.Sprintf("%s: request failed (status %d): %s", e.API, e.StatusCode, e.Message)
}
