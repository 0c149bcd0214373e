package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestIsInteractive(t *testing.T) {
	// The result depends on how the tests are run; it must not panic.
	_ = IsInteractive()
}

func TestIsTerminalRejectsNonTerminals(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer reported as terminal")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if IsTerminal(f) {
		t.Fatal("regular file reported as terminal")
	}
}
