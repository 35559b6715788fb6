package apiclient

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// RequestIDHeader carries the correlation id to the backend.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer token of one session; "" means signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Invalidator is implemented by token sources that can drop their session
// when the backend rejects the token.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Recorder receives one observation per backend call.
type Recorder interface {
	RecordAPICall(method, outcome string, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	ClientName string
	Headers    map[string]string
	HTTPClient *http.Client
	Recorder   Recorder
	Logger     *zap.Logger
}

// Client is the single configured request client for the REST backend.
// A Client is immutable; WithTokenSource returns a bound copy.
type Client struct {
	baseURL  string
	http     *http.Client
	headers  http.Header
	tokens   TokenSource
	recorder Recorder
	logger   *zap.Logger
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Token overrides the bound token source, e.g. for logout.
	Token string
}

// New builds a client. Outgoing calls are traced through otelhttp.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if opts.ClientName != "" {
		headers.Set("X-Client", opts.ClientName)
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		headers:  headers,
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// WithTokenSource returns a copy of c that authenticates with ts.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Token returns the bound session's token, or "" when none is bound.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

type requestIDKey struct{}

// ContextWithRequestID propagates an inbound request id to backend calls.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Do performs the call and returns the unwrapped envelope data.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	data, err := c.unwrap(ctx, resp.StatusCode, body)
	return data, err
}

// Download performs the call and returns the binary body with the filename
// announced in Content-Disposition.
func (c *Client) Download(ctx context.Context, req Request) (*File, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, err := c.unwrap(ctx, resp.StatusCode, body)
		return nil, err
	}
	return &File{
		Name:        FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// File is a downloaded payload.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	start := time.Now()
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	method := req.Method

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, req.Path, err)
	}
	for k, vals := range c.headers {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, requestID(ctx))

	token := req.Token
	if token == "" && c.tokens != nil {
		token, err = c.tokens.Token(ctx)
		if err != nil {
			de := apperrors.NewDomainError(apperrors.CodeAuth, "session token unavailable", http.StatusUnauthorized, nil)
			de.Err = err
			return nil, c.finish(req, start, de)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("backend call failed", zap.String("method", method), zap.String("path", req.Path), zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return nil, c.finish(req, start, err)
		}
		return nil, c.finish(req, start, apperrors.NewNetworkError(err))
	}
	c.logger.Debug("backend call", zap.String("method", method), zap.String("path", req.Path), zap.Int("status", resp.StatusCode))
	c.record(req, start, resp.StatusCode)
	return resp, nil
}

func (c *Client) finish(req Request, start time.Time, err error) error {
	if c.recorder != nil {
		outcome := "error"
		if de := apperrors.ToDomainError(err); de != nil {
			outcome = de.Code
		}
		c.recorder.RecordAPICall(req.Method, outcome, time.Since(start))
	}
	return err
}

func (c *Client) record(req Request, start time.Time, status int) {
	if c.recorder == nil {
		return
	}
	outcome := "ok"
	if status >= 400 {
		outcome = http.StatusText(status)
	}
	c.recorder.RecordAPICall(req.Method, outcome, time.Since(start))
}

// Call performs req and decodes the envelope data into T.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	data, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apperrors.NewBackendError(http.StatusBadGateway, "unexpected response shape", map[string]any{"path": req.Path, "cause": err.Error()})
	}
	return out, nil
}
