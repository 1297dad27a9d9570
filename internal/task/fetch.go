package task

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const fetchPrompt = `From this task: '%s'
Extract:
1. API URL
2. Output file path
Return as JSON: {"url": "...", "output": "..."}`

func opFetchURL() *Operation {
	return &Operation{
		ID:     "fetch-url",
		Intent: "fetch data from an API URL named in the task and save it to a file",
		Patterns: [][]string{
			{"fetch", "api"},
			{"fetch", "url"},
			{"download", "save"},
			{"api", "save"},
		},
		Run: runFetchURL,
	}
}

func runFetchURL(ctx context.Context, env Env, description string) (Result, error) {
	answer, err := env.Completer.Complete(ctx, fmt.Sprintf(fetchPrompt, description))
	if err != nil {
		return nil, fmt.Errorf("extract fetch params: %w", err)
	}

	var params struct {
		URL    string `json:"url"`
		Output string `json:"output"`
	}
	if err := decodeParams(answer, &params); err != nil {
		return nil, fmt.Errorf("fetch params: %w", err)
	}

	u, err := url.Parse(params.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: fetch url %q must be http or https", ErrBadParams, params.URL)
	}
	if params.Output == "" {
		return nil, fmt.Errorf("%w: missing output path", ErrBadParams)
	}

	// The remote read may leave the sandbox; the write may not.
	outPath, err := env.Sandbox.Resolve(params.Output)
	if err != nil {
		return nil, err
	}

	timeout := env.ExecTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: http %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fetch response: %w", err)
	}
	if err := env.Sandbox.WriteFile(outPath, body); err != nil {
		return nil, fmt.Errorf("write fetched data: %w", err)
	}

	return Result{
		"bytes_written": len(body),
		"output":        env.Sandbox.Rel(outPath),
	}, nil
}
