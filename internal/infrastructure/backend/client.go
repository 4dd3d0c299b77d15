// Package backend is the typed client for the Bumi Subur REST API. Every
// persistent read and write of the gateway goes through it.
package backend

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

	"github.com/bumisubur/pos-gateway/internal/config"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultErrorMessage is shown when the backend gives no usable message.
const DefaultErrorMessage = "Terjadi kesalahan, silakan coba lagi"

// Envelope is the wrapper the backend puts around every response.
type Envelope struct {
	Status  bool            `json:"status"`
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	base    http.RoundTripper
	timeout time.Duration
	log     *logrus.Logger

	Branches     Resource[entity.Branch]
	Suppliers    Resource[entity.Supplier]
	Users        Resource[entity.User]
	Stock        Resource[entity.StockProduct]
	PendingStock Resource[entity.PendingStock]
	Expenses     Resource[entity.Expense]
	AccessLogs   Resource[entity.AccessLog]
	Categories   Resource[entity.Category]
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg config.BackendConfig, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		base:    &headerTransport{base: http.DefaultTransport},
		timeout: timeout,
		log:     log,
	}
	c.Branches = NewResource[entity.Branch](c, "/api/cabang")
	c.Suppliers = NewResource[entity.Supplier](c, "/api/supplier")
	c.Users = NewResource[entity.User](c, "/api/user")
	c.Stock = NewResource[entity.StockProduct](c, "/api/produk")
	c.PendingStock = NewResource[entity.PendingStock](c, "/api/produk/pending")
	c.Expenses = NewResource[entity.Expense](c, "/api/pengeluaran")
	c.AccessLogs = NewResource[entity.AccessLog](c, "/api/log")
	c.Categories = NewResource[entity.Category](c, "/api/jenis")
	return c
}

// headerTransport adds the headers every backend call carries.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("ngrok-skip-browser-warning", "true")
	if r.Header.Get("Content-Type") == "" && r.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return t.base.RoundTrip(r)
}

// httpClient returns a client that sends token as a bearer credential. An
// empty token sends no Authorization header.
func (c *Client) httpClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Transport: c.base, Timeout: c.timeout}
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base,
		},
		Timeout: c.timeout,
	}
}

// do sends one request and decodes the envelope's data into out (if non-nil).
// Failures are returned as upstream *apperror.AppError values carrying the
// backend's normalized message.
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: failed to encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("backend: failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("Backend unreachable")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperror.NewUpstreamError(http.StatusBadGateway, DefaultErrorMessage)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewUpstreamError(http.StatusBadGateway, DefaultErrorMessage)
	}

	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("Backend call")

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 {
		msg := DefaultErrorMessage
		if decodeErr == nil {
			msg = NormalizeMessage(env)
		}
		return apperror.NewUpstreamError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("backend: malformed response from %s %s: %w", method, path, decodeErr)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("backend: unexpected data from %s %s: %w", method, path, err)
	}
	return nil
}

// NormalizeMessage picks the human-readable message of a failed response: a
// string message as is, the first entry of the first field of an object
// message, then the error field, then DefaultErrorMessage.
func NormalizeMessage(env Envelope) string {
	if msg := firstString(env.Message); msg != "" {
		return msg
	}
	if msg := firstString(env.Error); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// firstString walks raw in document order and returns the first string found
// at the top level, in the first object field, or at the head of that
// field's array.
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	switch v := tok.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Delim:
		if v != '{' {
			return ""
		}
	default:
		return ""
	}

	// skip the key
	if _, err := dec.Token(); err != nil {
		return ""
	}
	tok, err = dec.Token()
	if err != nil {
		return ""
	}
	switch v := tok.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Delim:
		if v != '[' {
			return ""
		}
		tok, err = dec.Token()
		if err != nil {
			return ""
		}
		if s, ok := tok.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
