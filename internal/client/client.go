// Package client talks to the remote resource service: mind-map generation
// and persistence of the edited graph.
//
// Errors are *errors.AppError values whose Message is the text shown to the
// user next to the control that triggered the call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/auth"
	"hackverse-mindmap/internal/config"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/breaker"
	"hackverse-mindmap/internal/infrastructure/observability"
)

const (
	msgNotAuthenticated  = "User not authenticated."
	msgMissingResourceID = "Resource ID is missing."
	maxBodyBytes         = 8 << 20
)

// TokenSource supplies the bearer token sent with every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no token configured")
	}
	return string(t), nil
}

// SignerTokenSource mints a fresh development token for one user per call.
type SignerTokenSource struct {
	Signer *auth.Signer
	UserID string
}

func (s SignerTokenSource) Token(context.Context) (string, error) {
	return s.Signer.Sign(s.UserID, "")
}

// Config is injected by the caller; there is no global base URL.
type Config struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
	Breaker config.CircuitBreaker
}

// Client calls the resource service on behalf of one user.
type Client struct {
	cfg        Config
	base       *url.URL
	tokens     TokenSource
	httpClient *http.Client
	generation *breaker.Breaker
	resources  *breaker.Breaker
	logger     *zap.Logger
	metrics    *observability.Collector
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *observability.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client. tokens may be nil for services without auth.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid base URL %q", cfg.BaseURL))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		base:   base,
		tokens: tokens,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c.generation = breaker.New("generation-client", cfg.Breaker, c.logger, c.metrics, nil)
	c.resources = breaker.New("resources-client", cfg.Breaker, c.logger, c.metrics, nil)
	return c, nil
}

// UserID returns the user the client acts for.
func (c *Client) UserID() string {
	return c.cfg.UserID
}

// response is a completed HTTP exchange.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// detail extracts the {"detail": "..."} message of an error body.
func (r *response) detail() string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(r.body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// serverFailure carries a 5xx response through the breaker so it counts as
// a failure while still reaching the caller.
type serverFailure struct {
	resp *response
}

func (e *serverFailure) Error() string {
	return fmt.Sprintf("server returned %d", e.resp.status)
}

var errUnauthenticated = errors.New("unauthenticated")

func (c *Client) path(elems ...string) string {
	escaped := make([]string, len(elems))
	for i, e := range elems {
		escaped[i] = url.PathEscape(e)
	}
	return c.base.JoinPath(escaped...).String()
}

// send performs one request through the breaker. A non-2xx response is
// returned without error; the error is reserved for transport failures,
// open breakers and authentication problems.
func (c *Client) send(ctx context.Context, b *breaker.Breaker, op, method, target string, payload interface{}) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to encode request", err)
		}
		body = bytes.NewReader(data)
	}

	token := ""
	if c.tokens != nil {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, errors.Join(errUnauthenticated, err)
		}
		token = t
	}

	start := time.Now()
	out, err := b.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, body: data}
		if r.status >= 500 {
			return nil, &serverFailure{resp: r}
		}
		return r, nil
	})
	c.metrics.RecordClientCall(op, time.Since(start), err)

	var sf *serverFailure
	switch {
	case err == nil:
		return out.(*response), nil
	case errors.As(err, &sf):
		return sf.resp, nil
	default:
		c.logger.Warn("Request failed",
			zap.String("operation", op),
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err))
		return nil, err
	}
}

func (c *Client) checkIdentity(resourceID string) error {
	if c.cfg.UserID == "" {
		return apperrors.NewUnauthorizedError(msgNotAuthenticated)
	}
	if strings.TrimSpace(resourceID) == "" {
		return apperrors.NewValidationError(msgMissingResourceID)
	}
	return nil
}

func startSpan(ctx context.Context, name, resourceID string) (context.Context, func(error)) {
	ctx, span := observability.StartSpan(ctx, name, attribute.String("resource.id", resourceID))
	return ctx, func(err error) { observability.EndSpan(span, err) }
}
