// Package llm wraps the external completion service behind a small
// Completer interface. The rest of the system treats the service as an
// opaque prompt-in, text-out function.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumenops/taskd/internal/config"
)

// ErrUpstream marks any failure of the completion service: transport
// errors, non-2xx statuses, and malformed payloads all normalize to it.
var ErrUpstream = errors.New("completion service failed")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteImage(ctx context.Context, prompt string, png []byte) (string, error)
}

type Client struct {
	token      string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewClient(cfg config.CompletionConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSec * time.Second
	}
	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, []map[string]any{{
		"role":    "user",
		"content": prompt,
	}})
}

// CompleteImage sends prompt together with a PNG image, inlined as a
// base64 data URL content part.
func (c *Client) CompleteImage(ctx context.Context, prompt string, png []byte) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return c.send(ctx, []map[string]any{{
		"role": "user",
		"content": []map[string]any{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
		},
	}})
}

func (c *Client) send(ctx context.Context, messages []map[string]any) (string, error) {
	if strings.TrimSpace(c.token) == "" {
		return "", fmt.Errorf("%w: missing token", ErrUpstream)
	}
	if c.baseURL == "" {
		return "", fmt.Errorf("%w: missing base url", ErrUpstream)
	}

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.7,
	}
	if c.maxTokens > 0 {
		body["max_tokens"] = c.maxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Error text deliberately carries no prompt content.
		return "", fmt.Errorf("%w: send request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in response", ErrUpstream)
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content in response", ErrUpstream)
	}
	return content, nil
}
