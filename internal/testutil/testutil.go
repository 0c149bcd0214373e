package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/conn-castle/webui-installer/internal/shell"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) {
	t.Helper()
	WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) {
	t.Helper()
	WriteScript(t, dir, name, fmt.Sprintf("exit %d\n", exitCode))
}

// WriteStubExpectArg writes an executable shell stub that succeeds only when expectedArg is present.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubExpectArg(t *testing.T, dir string, name string, expectedArg string) {
	t.Helper()
	WriteScript(t, dir, name, fmt.Sprintf("for arg in \"$@\"; do\n  if [ \"$arg\" = \"%s\" ]; then exit 0; fi\ndone\nexit 1\n", expectedArg))
}

// WriteScript writes an executable /bin/sh script with body and returns its path.
func WriteScript(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte("#!/bin/sh\n" + body)
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// FakeRunner is a shell.Runner that records commands instead of executing them.
// Handle, when set, decides the outcome of each call; it may create files to
// simulate side effects.
type FakeRunner struct {
	Handle func(cmd shell.Command) (string, error)

	mu    sync.Mutex
	calls []shell.Command
}

// Run records cmd and returns the handler's error.
func (f *FakeRunner) Run(ctx context.Context, cmd shell.Command) error {
	_, err := f.Output(ctx, cmd)
	return err
}

// Output records cmd and returns the handler's result.
func (f *FakeRunner) Output(ctx context.Context, cmd shell.Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Handle == nil {
		return "", nil
	}
	return f.Handle(cmd)
}

// Calls returns the recorded commands rendered as command lines.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.String())
	}
	return out
}

// Commands returns the recorded commands.
func (f *FakeRunner) Commands() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.calls...)
}

// CountPrefix returns how many recorded command lines start with prefix.
func (f *FakeRunner) CountPrefix(prefix string) int {
	n := 0
	for _, line := range f.Calls() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
