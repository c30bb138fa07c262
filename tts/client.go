// Package tts kapselt die Sprachsynthese über die OpenAI Audio-API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client ist ein Client für die Speech-API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
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

// WithHTTPClient überschreibt den HTTP-Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient erstellt einen neuen Speech-Client. timeout begrenzt die Wartezeit
// auf eine einzelne Synthese.
func NewClient(apiKey, model string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   model,
		timeout: timeout,
		// Kein Client-Timeout; die Synthese wird über den Kontext begrenzt.
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize erzeugt Audio für das Skript und schreibt es nach outPath.
// Läuft die Synthese in die Zeitbegrenzung, wird (false, nil) zurückgegeben;
// die Episode kann dann ohne Audio nicht veröffentlicht werden, der Lauf
// schlägt aber nicht fehl.
func (c *Client) Synthesize(ctx context.Context, script, voice, outPath string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          script,
		Voice:          voice,
		ResponseFormat: "wav",
	})
	if err != nil {
		return false, fmt.Errorf("encode speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("speech synthesis timed out", zap.Duration("timeout", c.timeout))
			return false, nil
		}
		return false, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("speech synthesis failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return false, fmt.Errorf("create audio file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("speech download timed out", zap.Duration("timeout", c.timeout))
			return false, nil
		}
		return false, fmt.Errorf("write audio file: %w", err)
	}
	return true, nil
}
