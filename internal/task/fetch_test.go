package task

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenops/taskd/internal/sandbox"
)

func TestFetchURL(t *testing.T) {
	payload := `{"users": [1, 2, 3]}`
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer remote.Close()

	fc := &fakeCompleter{
		reply: fmt.Sprintf(`{"url": "%s/users", "output": "users.json"}`, remote.URL),
	}
	env := testEnv(t, fc)

	result, err := runFetchURL(context.Background(), env, "fetch the users api and save it")
	if err != nil {
		t.Fatalf("runFetchURL: %v", err)
	}
	if result["bytes_written"] != len(payload) {
		t.Errorf("bytes_written = %v, want %d", result["bytes_written"], len(payload))
	}
	if result["output"] != "users.json" {
		t.Errorf("output = %v, want users.json", result["output"])
	}

	got, err := env.Sandbox.ReadFile("users.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != payload {
		t.Errorf("saved = %q, want %q", got, payload)
	}
}

func TestFetchURL_FencedParams(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer remote.Close()

	fc := &fakeCompleter{
		reply: "```json\n" + fmt.Sprintf(`{"url": "%s", "output": "out.txt"}`, remote.URL) + "\n```",
	}
	env := testEnv(t, fc)

	if _, err := runFetchURL(context.Background(), env, "fetch and save"); err != nil {
		t.Fatalf("runFetchURL with fenced params: %v", err)
	}
}

func TestFetchURL_OutputOutsideSandbox(t *testing.T) {
	fc := &fakeCompleter{
		reply: `{"url": "https://example.com/data", "output": "/etc/evil.txt"}`,
	}
	env := testEnv(t, fc)

	_, err := runFetchURL(context.Background(), env, "fetch and save")
	if !errors.Is(err, sandbox.ErrEscape) {
		t.Errorf("err = %v, want ErrEscape", err)
	}
}

func TestFetchURL_MalformedParams(t *testing.T) {
	fc := &fakeCompleter{reply: "sorry, I cannot extract that"}
	env := testEnv(t, fc)

	_, err := runFetchURL(context.Background(), env, "fetch and save")
	if !errors.Is(err, ErrBadParams) {
		t.Errorf("err = %v, want ErrBadParams", err)
	}
}

func TestFetchURL_RejectsNonHTTPScheme(t *testing.T) {
	fc := &fakeCompleter{reply: `{"url": "file:///etc/passwd", "output": "out.txt"}`}
	env := testEnv(t, fc)

	_, err := runFetchURL(context.Background(), env, "fetch and save")
	if !errors.Is(err, ErrBadParams) {
		t.Errorf("err = %v, want ErrBadParams", err)
	}
}

func TestFetchURL_RemoteError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer remote.Close()

	fc := &fakeCompleter{reply: fmt.Sprintf(`{"url": "%s", "output": "out.txt"}`, remote.URL)}
	env := testEnv(t, fc)

	if _, err := runFetchURL(context.Background(), env, "fetch and save"); err == nil {
		t.Error("expected error for non-2xx remote status")
	}
}
