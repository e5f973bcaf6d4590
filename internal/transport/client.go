// Package transport is the console's single HTTP client to the backend. It
// attaches credentials, validates the response envelope and reports
// degraded-system signals for failed writes.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/models"
)

// TokenSource yields the bearer token for a call. An empty token sends no
// Authorization header; an error fails the call with status 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Calls whose path starts with IntegrationPrefix use IntegrationTokens
	// instead of Tokens.
	IntegrationPrefix string
	Tokens            TokenSource
	IntegrationTokens TokenSource

	Reporter   Reporter
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Request is one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

type Client struct {
	base              *url.URL
	integrationPrefix string
	tokens            TokenSource
	integrationTokens TokenSource
	reporter          Reporter
	http              *http.Client
	log               zerolog.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc = &http.Client{Timeout: opts.Timeout, Jar: jar}
	}

	c := &Client{
		base:              base,
		integrationPrefix: opts.IntegrationPrefix,
		tokens:            opts.Tokens,
		integrationTokens: opts.IntegrationTokens,
		reporter:          opts.Reporter,
		http:              hc,
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	} else {
		c.log = logger.Component("transport")
	}
	return c, nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Do performs the call and returns the validated envelope. Any failure is an
// *Error. A 5xx answer to a mutating call is also sent to the Reporter,
// exactly once.
func (c *Client) Do(ctx context.Context, req Request) (*models.Envelope[json.RawMessage], error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	env, status, err := c.do(ctx, method, req)

	c.log.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if err != nil && isMutating(method) && status >= http.StatusInternalServerError && c.reporter != nil {
		msg := ""
		if te, ok := AsError(err); ok {
			msg = te.Data.Message
		}
		c.reporter.ReportDegraded(Degraded{
			Method:  method,
			Path:    req.Path,
			Status:  status,
			Message: msg,
			At:      time.Now(),
		})
	}
	return env, err
}

func (c *Client) tokenFor(path string) TokenSource {
	if c.integrationPrefix != "" && strings.HasPrefix(path, c.integrationPrefix) {
		return c.integrationTokens
	}
	return c.tokens
}

func (c *Client) do(ctx context.Context, method string, req Request) (*models.Envelope[json.RawMessage], int, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, newError(0, "encode request body", err)
		}
		body = bytes.NewReader(payload)
	}

	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, 0, newError(0, err.Error(), err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if src := c.tokenFor(req.Path); src != nil {
		token, err := src.Token(ctx)
		if err != nil {
			return nil, http.StatusUnauthorized, newError(http.StatusUnauthorized, err.Error(), err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, newError(0, err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, newError(0, "read response body: "+err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, decodeError(resp.StatusCode, raw)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, resp.StatusCode, newError(resp.StatusCode, err.Error(), err)
	}
	if !env.Success {
		return nil, resp.StatusCode, &Error{
			Status: resp.StatusCode,
			Data:   models.ErrorBody{Success: false, Message: env.Message},
		}
	}
	return env, resp.StatusCode, nil
}

// ErrMalformedEnvelope is returned when a 2xx body is not a response
// envelope.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

type rawEnvelope struct {
	StatusCode *int            `json:"statusCode"`
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Meta       *models.Meta    `json:"meta"`
}

func decodeEnvelope(raw []byte) (*models.Envelope[json.RawMessage], error) {
	var re rawEnvelope
	if err := json.Unmarshal(raw, &re); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if re.StatusCode == nil || re.Success == nil {
		return nil, fmt.Errorf("%w: statusCode and success are required", ErrMalformedEnvelope)
	}
	return &models.Envelope[json.RawMessage]{
		StatusCode: *re.StatusCode,
		Success:    *re.Success,
		Message:    re.Message,
		Data:       re.Data,
		Meta:       re.Meta,
	}, nil
}

func decodeError(status int, raw []byte) *Error {
	var body models.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body = models.ErrorBody{Message: http.StatusText(status)}
	}
	body.Success = false
	return &Error{Status: status, Data: body}
}

// Decode unmarshals an envelope's data into out. Types implementing
// models.EnvelopeDecoder also receive the meta block.
func Decode(env *models.Envelope[json.RawMessage], out any) error {
	if d, ok := out.(models.EnvelopeDecoder); ok {
		return d.DecodeEnvelope(env.Data, env.Meta)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
