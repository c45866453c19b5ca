// Package assetapi is the typed client of the remote asset backend.
package assetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"assettrack/config"
	deliverycontext "assettrack/internal/delivery/context"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const maxErrorBodySize = 64 << 10

// Params holds dependencies for the API client, injected by Fx.
type Params struct {
	fx.In

	Config    *config.Config
	Tokens    service.TokenStore
	Inspector service.TokenInspector
	Logger    *slog.Logger
}

// Client implements service.AssetAPI over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     service.TokenStore
	inspector  service.TokenInspector
	logger     *slog.Logger
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock replaces time.Now, used to judge token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates the configured backend client.
func NewClient(params Params) service.AssetAPI {
	return New(params.Config.API.BaseURL, params.Tokens, params.Inspector, params.Logger,
		WithHTTPClient(&http.Client{Timeout: params.Config.API.Timeout}),
		WithUserAgent(params.Config.API.UserAgent),
	)
}

// New creates a client for baseURL. inspector may be nil.
func New(baseURL string, tokens service.TokenStore, inspector service.TokenInspector, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		inspector:  inspector,
		logger:     logger,
		now:        time.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// envelope is the part of every backend response that says whether it worked.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (e *envelope) failed() (bool, string) {
	if e.Success != nil && !*e.Success {
		return true, e.Message
	}

	return false, ""
}

type enveloped interface {
	failed() (bool, string)
}

// multipartBody is a file upload; it sets its own Content-Type.
type multipartBody struct {
	field    string
	filename string
	content  io.Reader
}

func (m *multipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(m.field, m.filename)
	if err != nil {
		return nil, "", errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, m.content); err != nil {
		return nil, "", errors.Wrap(err, "copy form file")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}

	return &buf, w.FormDataContentType(), nil
}

// do performs one authenticated request. body is nil, a *multipartBody or any
// JSON-encodable value; out, when non-nil, receives the decoded envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, out enveloped) error {
	token, err := c.bearerToken()
	if err != nil {
		return err
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *multipartBody:
		reader, contentType, err = b.encode()
		if err != nil {
			return err
		}
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := deliverycontext.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set(deliverycontext.HeaderXRequestID, requestID)

	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger)
	start := c.now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	logger.Debug("Backend call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", c.now().Sub(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	if failed, message := out.failed(); failed {
		if message == "" {
			message = "Request failed"
		}

		return domainerrors.NewAPIError(resp.StatusCode, message)
	}

	return nil
}

// bearerToken reads the token fresh on every call.
func (c *Client) bearerToken() (string, error) {
	session, err := c.tokens.Load()
	if err != nil {
		return "", errors.Wrap(err, "load session")
	}
	if session == nil || session.Token == "" {
		return "", domainerrors.ErrAuthRequired
	}
	if session.Expired(c.now()) {
		return "", domainerrors.ErrSessionExpired
	}
	if c.inspector != nil && session.ExpiresAt == nil {
		exp, err := c.inspector.ExpiresAt(session.Token)
		if err == nil && exp != nil && !c.now().Before(*exp) {
			return "", domainerrors.ErrSessionExpired
		}
	}

	return session.Token, nil
}

// readAPIError turns a non-2xx response into an *APIError carrying the body's
// message when there is one.
func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var body envelope
	if err := json.Unmarshal(data, &body); err != nil {
		body.Message = ""
	}

	return domainerrors.NewAPIError(resp.StatusCode, body.Message)
}
