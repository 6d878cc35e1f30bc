// Package api is the HTTP client for the Holidaze REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/domain"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/session"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/response"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

const (
	DefaultBaseURL     = "https://v2.api.noroff.dev/holidaze"
	DefaultAuthBaseURL = "https://v2.api.noroff.dev"

	// APIKeyHeader carries the Noroff API key
	APIKeyHeader = "X-Noroff-API-Key"

	maxBodyBytes = 10 << 20
)

// Config holds API client settings
type Config struct {
	BaseURL     string
	AuthBaseURL string
	// APIKey is used when the session store holds no key of its own
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Envelope is the canonical result of every call: the payload plus optional paging metadata
type Envelope[T any] struct {
	Data T
	Meta *response.Meta
}

// Client talks to the two API roots: one for identity operations and one for domain resources
type Client struct {
	baseURL     string
	authBaseURL string
	apiKey      string
	http        *http.Client
	store       session.Store
	log         *logger.Logger
	now         func() time.Time
}

// New creates a Client. store supplies the bearer token and stored API key; it may be nil.
func New(cfg Config, store session.Store) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = DefaultAuthBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		authBaseURL: strings.TrimRight(cfg.AuthBaseURL, "/"),
		apiKey:      cfg.APIKey,
		http:        hc,
		store:       store,
		log:         logger.OrNop(cfg.Logger).Named("api"),
		now:         time.Now,
	}
}

// request describes one call
type request struct {
	op     string
	method string
	auth   bool // identity root instead of domain root
	path   string
	query  url.Values
	body   any
	// fresh bypasses caches with no-store and a "_" timestamp parameter
	fresh bool
	// requireToken fails fast with ErrNotAuthenticated when logged out
	requireToken bool
}

// call runs req and decodes the payload into T. A 204 or blank body yields the zero T.
func call[T any](ctx context.Context, c *Client, req request) (*Envelope[T], error) {
	ctx, span := telemetry.StartSpan(ctx, "holidaze.api."+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("http.route", req.path),
		),
	)
	defer span.End()

	body, err := c.send(ctx, req)
	if err != nil {
		if !IsCanceled(err) {
			telemetry.SetSpanError(ctx, err)
		}
		return nil, err
	}

	env, err := decodeEnvelope[T](body)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", req.method, req.path, err)
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	return env, nil
}

// send performs the HTTP exchange and returns the body of a 2xx response
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	token, apiKey, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if req.requireToken && token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	u, err := c.url(req)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", req.op, err)
		}
		payload = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if apiKey != "" {
		httpReq.Header.Set(APIKeyHeader, apiKey)
	}
	if req.fresh {
		httpReq.Header.Set("Cache-Control", "no-store")
	}
	telemetry.InjectHeaders(ctx, httpReq.Header)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if IsCanceled(err) {
			c.log.Debug("request cancelled", zap.String("method", req.method), zap.String("path", req.path))
		} else {
			c.log.Warn("request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		}
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", req.method, req.path, err)
	}

	c.log.Debug("api request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	telemetry.SetSpanAttributes(ctx, attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, req.method, req.path, body)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return body, nil
}

func (c *Client) credentials(ctx context.Context) (token, apiKey string, err error) {
	apiKey = c.apiKey
	if c.store == nil {
		return "", apiKey, nil
	}
	token, err = c.store.Token(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, session.ResolveAPIKey(ctx, c.store, apiKey), nil
}

func (c *Client) url(req request) (string, error) {
	base := c.baseURL
	if req.auth {
		base = c.authBaseURL
	}
	u, err := url.Parse(base + req.path)
	if err != nil {
		return "", fmt.Errorf("invalid request url: %w", err)
	}
	q := u.Query()
	for k, vs := range req.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if req.fresh {
		q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodeEnvelope normalizes the three shapes the API returns ({data: T},
// {data: T[]} and a bare T) into one Envelope. A blank body is an absent value.
func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	env := &Envelope[T]{}
	if trimBody(body) == "" {
		return env, nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
		Meta *response.Meta  `json:"meta"`
	}
	if err := decodeJSON(body, &wrapped); err == nil && wrapped.Data != nil {
		env.Meta = wrapped.Meta
		if string(wrapped.Data) == "null" {
			return env, nil
		}
		if err := decodeJSON(wrapped.Data, &env.Data); err != nil {
			return nil, fmt.Errorf("failed to decode response data: %w", err)
		}
		return env, nil
	}

	if err := decodeJSON(body, &env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return env, nil
}

func decodeJSON(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func trimBody(b []byte) string {
	return strings.TrimSpace(string(b))
}

// escape encodes a single path segment
func escape(s string) string {
	return url.PathEscape(s)
}
