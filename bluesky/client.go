// Package bluesky kapselt das Veröffentlichen von Posts über das AT-Protokoll.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client ist ein minimaler Client für bsky.social.
type Client struct {
	baseURL     string
	handle      string
	appPassword string
	httpClient  *http.Client
	logger      *zap.Logger

	accessJwt string
	did       string
}

// Option passt den Client an.
type Option func(*Client)

// WithBaseURL überschreibt die API-Basis-URL (nützlich für Tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if base != "" {
			c.baseURL = base
		}
	}
}

// NewClient erstellt einen neuen Bluesky-Client.
func NewClient(handle, appPassword string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     "https://bsky.social",
		handle:      handle,
		appPassword: appPassword,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured meldet, ob Zugangsdaten hinterlegt sind.
func (c *Client) Configured() bool {
	return c.handle != "" && c.appPassword != ""
}

type sessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
}

// Authenticate erstellt eine Session mit Handle und App-Passwort.
func (c *Client) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"identifier": c.handle,
		"password":   c.appPassword,
	})
	if err != nil {
		return fmt.Errorf("encode session request: %w", err)
	}

	var session sessionResponse
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", payload, &session); err != nil {
		return fmt.Errorf("bluesky authentication failed: %w", err)
	}
	if session.AccessJwt == "" || session.DID == "" {
		return fmt.Errorf("bluesky authentication returned empty session")
	}

	c.accessJwt = session.AccessJwt
	c.did = session.DID
	c.logger.Info("authenticated with bluesky", zap.String("handle", c.handle))
	return nil
}

type facet struct {
	Index    byteSlice      `json:"index"`
	Features []facetFeature `json:"features"`
}

type byteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type facetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
}

// Post veröffentlicht einen Text. Ist linkURL gesetzt, wird er an den Text
// angehängt und als anklickbarer Link ausgezeichnet.
func (c *Client) Post(ctx context.Context, text, linkURL string) error {
	if c.accessJwt == "" {
		if err := c.Authenticate(ctx); err != nil {
			return err
		}
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}

	if linkURL != "" {
		full := text + "\n\n" + linkURL
		record["text"] = full
		record["facets"] = []facet{{
			// Byte-Offsets, nicht Runen-Offsets.
			Index: byteSlice{
				ByteStart: len(full) - len(linkURL),
				ByteEnd:   len(full),
			},
			Features: []facetFeature{{
				Type: "app.bsky.richtext.facet#link",
				URI:  linkURL,
			}},
		}}
	}

	payload, err := json.Marshal(map[string]any{
		"repo":       c.did,
		"collection": "app.bsky.feed.post",
		"record":     record,
	})
	if err != nil {
		return fmt.Errorf("encode post request: %w", err)
	}

	if err := c.post(ctx, "/xrpc/com.atproto.repo.createRecord", payload, nil); err != nil {
		return fmt.Errorf("bluesky post failed: %w", err)
	}
	c.logger.Info("posted to bluesky", zap.Int("length", len(record["text"].(string))))
	return nil
}

// post schickt einen JSON-Request an einen XRPC-Endpunkt.
func (c *Client) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
