// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/platform"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes fetch failures.
type ErrorType int

const (
	ErrTypeCatalogUnavailable ErrorType = iota + 1
	ErrTypeMessagesUnavailable
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeCatalogUnavailable:
		return "catalog unavailable"
	case ErrTypeMessagesUnavailable:
		return "messages unavailable"
	}
	return "unknown"
}

// ClientError is returned by every fetch. Transport failures, HTTP errors,
// malformed JSON and schema violations all surface as the same type.
type ClientError struct {
	Type       ErrorType
	URL        string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	msg := e.Type.String()
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// Sentinel errors for errors.Is checks.
var (
	ErrCatalogUnavailable  = &ClientError{Type: ErrTypeCatalogUnavailable}
	ErrMessagesUnavailable = &ClientError{Type: ErrTypeMessagesUnavailable}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// LanguagePlaceholder is replaced by the language code in ClientConfig.MessagesURL.
const LanguagePlaceholder = "{lang}"

// maxDocumentSize bounds catalog and message documents.
const maxDocumentSize = 4 << 20

// ClientConfig holds the endpoints of the remote catalog.
type ClientConfig struct {
	// CatalogURL serves {"apps": [...]}.
	CatalogURL string

	// MessagesURL serves a flat key/template object; must contain {lang}.
	MessagesURL string

	// Timeout per request (default: 60s)
	Timeout time.Duration

	// UserAgent sent with every request
	UserAgent string
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		CatalogURL:  "https://infinitymc.ru/ih/info.json",
		MessagesURL: "https://infinitymc.ru/ih/" + LanguagePlaceholder + ".json",
		Timeout:     60 * time.Second,
		UserAgent:   "ia",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client fetches the catalog and localized message tables. Each fetch is a
// single attempt; callers treat any error as fatal.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if config.CatalogURL == "" {
		config.CatalogURL = defaults.CatalogURL
	}
	if config.MessagesURL == "" {
		config.MessagesURL = defaults.MessagesURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// FetchCatalog downloads and decodes the catalog. The result is not validated;
// see FetchValidCatalog.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	var cat Catalog
	if err := c.getJSON(ctx, c.config.CatalogURL, &cat); err != nil {
		return nil, &ClientError{Type: ErrTypeCatalogUnavailable, URL: c.config.CatalogURL, StatusCode: statusOf(err), Cause: causeOf(err)}
	}
	if cat.Apps == nil {
		return nil, &ClientError{Type: ErrTypeCatalogUnavailable, URL: c.config.CatalogURL, Cause: errors.New(`missing "apps" field`)}
	}
	return &cat, nil
}

// FetchValidCatalog fetches the catalog and validates it for p. Schema
// violations are reported as ErrCatalogUnavailable.
func (c *Client) FetchValidCatalog(ctx context.Context, p platform.Platform) (*Catalog, error) {
	cat, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(p); err != nil {
		return nil, &ClientError{Type: ErrTypeCatalogUnavailable, URL: c.config.CatalogURL, Cause: err}
	}
	return cat, nil
}

// FetchMessages returns the message table for lang. The default language is
// served from the built-in table without touching the network.
func (c *Client) FetchMessages(ctx context.Context, lang string) (messages.Table, error) {
	if lang == "" || lang == messages.DefaultLanguage {
		return messages.Default(), nil
	}

	url := c.MessagesURL(lang)
	var table messages.Table
	if err := c.getJSON(ctx, url, &table); err != nil {
		return nil, &ClientError{Type: ErrTypeMessagesUnavailable, URL: url, StatusCode: statusOf(err), Cause: causeOf(err)}
	}
	if len(table) == 0 {
		return nil, &ClientError{Type: ErrTypeMessagesUnavailable, URL: url, Cause: errors.New("empty message table")}
	}
	return table.WithFallback(), nil
}

// MessagesURL returns the URL of the message table for lang.
func (c *Client) MessagesURL(lang string) string {
	return strings.ReplaceAll(c.config.MessagesURL, LanguagePlaceholder, lang)
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// statusError carries a non-2xx status out of getJSON.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status " + e.status
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

func causeOf(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return nil
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
