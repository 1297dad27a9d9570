package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecentLogs(t *testing.T) {
	env := testEnv(t, nil)
	base := time.Now().Add(-time.Hour)

	// 12 logs with distinct mtimes; file 11 is the newest.
	for i := 0; i < 12; i++ {
		name := filepath.Join("logs", fmt.Sprintf("app-%02d.log", i))
		content := fmt.Sprintf("first line %02d\nsecond line %02d\n", i, i)
		if err := env.Sandbox.WriteFile(name, []byte(content)); err != nil {
			t.Fatal(err)
		}
		abs := filepath.Join(env.Sandbox.Dir(), name)
		mtime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(abs, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	result, err := runRecentLogs(context.Background(), env, "summarize recent logs")
	if err != nil {
		t.Fatalf("runRecentLogs: %v", err)
	}
	if result["logs_processed"] != 10 {
		t.Errorf("logs_processed = %v, want 10", result["logs_processed"])
	}

	out, err := env.Sandbox.ReadFile(logsRecentFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(out), "\n")
	if len(lines) != 10 {
		t.Fatalf("output has %d lines, want 10", len(lines))
	}
	// Descending recency: newest (11) first, oldest two (0, 1) dropped.
	for i, line := range lines {
		want := fmt.Sprintf("first line %02d", 11-i)
		if line != want {
			t.Errorf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestRecentLogs_FewerThanTen(t *testing.T) {
	env := testEnv(t, nil)
	for i := 0; i < 3; i++ {
		name := filepath.Join("logs", fmt.Sprintf("a%d.log", i))
		if err := env.Sandbox.WriteFile(name, []byte(fmt.Sprintf("l%d\n", i))); err != nil {
			t.Fatal(err)
		}
	}

	result, err := runRecentLogs(context.Background(), env, "recent logs")
	if err != nil {
		t.Fatalf("runRecentLogs: %v", err)
	}
	if result["logs_processed"] != 3 {
		t.Errorf("logs_processed = %v, want 3", result["logs_processed"])
	}
}

func TestRecentLogs_EmptyDir(t *testing.T) {
	env := testEnv(t, nil)

	result, err := runRecentLogs(context.Background(), env, "recent logs")
	if err != nil {
		t.Fatalf("runRecentLogs: %v", err)
	}
	if result["logs_processed"] != 0 {
		t.Errorf("logs_processed = %v, want 0", result["logs_processed"])
	}
	out, err := env.Sandbox.ReadFile(logsRecentFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestRecentLogs_IgnoresNonLogFiles(t *testing.T) {
	env := testEnv(t, nil)
	if err := env.Sandbox.WriteFile("logs/a.log", []byte("keep\n")); err != nil {
		t.Fatal(err)
	}
	if err := env.Sandbox.WriteFile("logs/b.txt", []byte("skip\n")); err != nil {
		t.Fatal(err)
	}

	result, err := runRecentLogs(context.Background(), env, "recent logs")
	if err != nil {
		t.Fatal(err)
	}
	if result["logs_processed"] != 1 {
		t.Errorf("logs_processed = %v, want 1", result["logs_processed"])
	}
}
