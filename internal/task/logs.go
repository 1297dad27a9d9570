package task

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	logsGlob       = "logs/*.log"
	logsRecentFile = "logs-recent.txt"
	recentLogCount = 10
)

func opRecentLogs() *Operation {
	return &Operation{
		ID:     "recent-logs",
		Intent: "collect the first line of the 10 most recently modified log files",
		Patterns: [][]string{
			{"recent", "log"},
			{"logs-recent"},
		},
		Run: runRecentLogs,
	}
}

func runRecentLogs(ctx context.Context, env Env, description string) (Result, error) {
	files, err := env.Sandbox.Glob(logsGlob)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	type logFile struct {
		path  string
		mtime time.Time
	}
	entries := make([]logFile, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", env.Sandbox.Rel(f), err)
		}
		entries = append(entries, logFile{path: f, mtime: info.ModTime()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].mtime.After(entries[j].mtime)
	})
	if len(entries) > recentLogCount {
		entries = entries[:recentLogCount]
	}

	firstLines := make([]string, 0, len(entries))
	for _, e := range entries {
		line, err := readFirstLine(e.path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", env.Sandbox.Rel(e.path), err)
		}
		firstLines = append(firstLines, line)
	}

	out := strings.Join(firstLines, "\n")
	if err := env.Sandbox.WriteFile(logsRecentFile, []byte(out)); err != nil {
		return nil, fmt.Errorf("write %s: %w", logsRecentFile, err)
	}

	return Result{"logs_processed": len(firstLines)}, nil
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
