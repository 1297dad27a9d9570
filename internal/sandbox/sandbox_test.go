package sandbox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newRoot(t *testing.T) *Root {
	t.Helper()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_RelativeRootRejected(t *testing.T) {
	if _, err := New("relative/dir"); err == nil {
		t.Error("New should reject a relative root")
	}
}

func TestResolve_Inside(t *testing.T) {
	r := newRoot(t)

	abs, err := r.Resolve("contacts.json")
	if err != nil {
		t.Fatalf("Resolve relative: %v", err)
	}
	if abs != filepath.Join(r.Dir(), "contacts.json") {
		t.Errorf("Resolve = %q, want under %q", abs, r.Dir())
	}

	abs2, err := r.Resolve(filepath.Join(r.Dir(), "logs", "a.log"))
	if err != nil {
		t.Fatalf("Resolve absolute: %v", err)
	}
	if !strings.HasPrefix(abs2, r.Dir()) {
		t.Errorf("Resolve = %q, escapes %q", abs2, r.Dir())
	}
}

func TestResolve_Outside(t *testing.T) {
	r := newRoot(t)

	for _, candidate := range []string{
		"/etc/passwd",
		"../outside.txt",
		"a/../../outside.txt",
		"",
	} {
		if _, err := r.Resolve(candidate); !errors.Is(err, ErrEscape) {
			t.Errorf("Resolve(%q) = %v, want ErrEscape", candidate, err)
		}
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	r := newRoot(t)

	link := filepath.Join(r.Dir(), "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	if _, err := r.Resolve("sneaky/secret.txt"); !errors.Is(err, ErrEscape) {
		t.Errorf("Resolve through escaping symlink = %v, want ErrEscape", err)
	}
}

func TestResolve_MissingOutputPath(t *testing.T) {
	r := newRoot(t)

	// Output files that don't exist yet must still resolve.
	if _, err := r.Resolve("git_repos/new/output.txt"); err != nil {
		t.Errorf("Resolve missing path: %v", err)
	}
}

func TestCheckDescription(t *testing.T) {
	r := newRoot(t)
	rootFile := filepath.Join(r.Dir(), "contacts.json")

	ok := []string{
		"Sort the contacts file by last name",
		"Sort " + rootFile + " and write the result",
		"Fetch https://api.example.com/users/42 and save to data.json",
		"",
	}
	for _, text := range ok {
		if err := r.CheckDescription(text); err != nil {
			t.Errorf("CheckDescription(%q) = %v, want nil", text, err)
		}
	}

	bad := []string{
		"Read /etc/passwd and summarize it",
		"Copy the data to /home/user/exfil.txt",
		"Delete /var/log/syslog",
	}
	for _, text := range bad {
		if err := r.CheckDescription(text); !errors.Is(err, ErrEscape) {
			t.Errorf("CheckDescription(%q) = %v, want ErrEscape", text, err)
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	r := newRoot(t)
	payload := []byte("line one\nline two\n")

	if err := r.WriteFile("out/result.txt", payload); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := r.ReadFile("out/result.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip = %q, want %q", got, payload)
	}
}

func TestWriteFile_Outside(t *testing.T) {
	r := newRoot(t)
	if err := r.WriteFile("/etc/taskd-test", []byte("x")); !errors.Is(err, ErrEscape) {
		t.Errorf("WriteFile outside = %v, want ErrEscape", err)
	}
}

func TestGlob(t *testing.T) {
	r := newRoot(t)
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		if err := r.WriteFile(filepath.Join("logs", name), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := r.Glob("logs/*.log")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Glob matched %d files, want 2", len(matches))
	}

	if _, err := r.Glob("/etc/*"); !errors.Is(err, ErrEscape) {
		t.Errorf("Glob outside = %v, want ErrEscape", err)
	}
}

func TestLockPath_Serializes(t *testing.T) {
	r := newRoot(t)
	path := filepath.Join(r.Dir(), "shared.txt")

	var inCritical int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := r.LockPath(path)
			defer unlock()
			inCritical++
			if inCritical != 1 {
				t.Errorf("lock held by %d goroutines", inCritical)
			}
			inCritical--
		}()
	}
	wg.Wait()
}
