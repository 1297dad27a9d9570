package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	docsDir       = "docs"
	docsIndexFile = "docs/index.json"
)

var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

func opExtractHeaders() *Operation {
	return &Operation{
		ID:     "extract-headers",
		Intent: "build an index of the first H1 header of every markdown file under docs",
		Patterns: [][]string{
			{"markdown", "header"},
			{"markdown", "h1"},
			{"docs", "index"},
		},
		Run: runExtractHeaders,
	}
}

func runExtractHeaders(ctx context.Context, env Env, description string) (Result, error) {
	root, err := env.Sandbox.Resolve(docsDir)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if m := h1Pattern.FindSubmatch(content); m != nil {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			headers[filepath.ToSlash(rel)] = strings.TrimSpace(string(m[1]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", docsDir, err)
	}

	out, err := json.MarshalIndent(headers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal index: %w", err)
	}
	if err := env.Sandbox.WriteFile(docsIndexFile, out); err != nil {
		return nil, fmt.Errorf("write %s: %w", docsIndexFile, err)
	}

	return Result{"files_processed": len(headers)}, nil
}
