package task

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"strings"
	"time"
)

const gitWorkDir = "git_repos"

const gitPrompt = `From this task: '%s'
Extract:
1. Repository URL
2. Commit message
Return as JSON: {"repo": "...", "message": "..."}`

func opGitOps() *Operation {
	return &Operation{
		ID:     "git-ops",
		Intent: "clone a git repository named in the task and make a commit in it",
		Patterns: [][]string{
			{"git", "clone"},
			{"clone", "repo"},
			{"clone", "commit"},
		},
		Run: runGitOps,
	}
}

func runGitOps(ctx context.Context, env Env, description string) (Result, error) {
	answer, err := env.Completer.Complete(ctx, fmt.Sprintf(gitPrompt, description))
	if err != nil {
		return nil, fmt.Errorf("extract git params: %w", err)
	}

	var params struct {
		Repo    string `json:"repo"`
		Message string `json:"message"`
	}
	if err := decodeParams(answer, &params); err != nil {
		return nil, fmt.Errorf("git params: %w", err)
	}

	u, err := url.Parse(params.Repo)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: repo url %q must be http or https", ErrBadParams, params.Repo)
	}
	if strings.TrimSpace(params.Message) == "" {
		return nil, fmt.Errorf("%w: missing commit message", ErrBadParams)
	}

	repoName := strings.TrimSuffix(path.Base(u.Path), ".git")
	if repoName == "" || repoName == "." || repoName == "/" {
		return nil, fmt.Errorf("%w: cannot derive repo name from %q", ErrBadParams, params.Repo)
	}

	repoPath, err := env.Sandbox.Resolve(path.Join(gitWorkDir, repoName))
	if err != nil {
		return nil, err
	}

	timeout := env.ExecTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	if err := runGit(ctx, timeout, env.Sandbox.Dir(), "clone", params.Repo, repoPath); err != nil {
		return nil, fmt.Errorf("git clone: %w", err)
	}
	if err := runGit(ctx, timeout, repoPath, "add", "."); err != nil {
		return nil, fmt.Errorf("git add: %w", err)
	}
	// A fresh clone has nothing staged; allow-empty keeps the
	// clone-then-commit contract meaningful anyway.
	if err := runGit(ctx, timeout, repoPath, "commit", "--allow-empty", "-m", params.Message); err != nil {
		return nil, fmt.Errorf("git commit: %w", err)
	}

	return Result{"repo": repoName}, nil
}

func runGit(ctx context.Context, timeout time.Duration, dir string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
