package task

import (
	"context"
	"testing"
	"time"

	"github.com/lumenops/taskd/internal/sandbox"
)

// fakeCompleter scripts the completion service for operation tests.
type fakeCompleter struct {
	reply      string
	imageReply string
	err        error
	prompts    []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) CompleteImage(ctx context.Context, prompt string, png []byte) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.imageReply != "" {
		return f.imageReply, nil
	}
	return f.reply, nil
}

func testEnv(t *testing.T, completer *fakeCompleter) Env {
	t.Helper()
	root, err := sandbox.New(t.TempDir())
	if err != nil {
		t.Fatalf("sandbox.New: %v", err)
	}
	env := Env{Sandbox: root, ExecTimeout: 10 * time.Second}
	if completer != nil {
		env.Completer = completer
	}
	return env
}
