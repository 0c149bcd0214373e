package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestMainVersion(t *testing.T) {
	var out bytes.Buffer
	if err := execute([]string{"wuinstall", "--version"}, &out, &out); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestMainUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := execute([]string{"wuinstall", "unknown"}, &out, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunMainSuccess(t *testing.T) {
	var out bytes.Buffer
	called := false
	runMain([]string{"wuinstall", "--version"}, &out, &out, func(code int) {
		called = true
	})
	if called {
		t.Fatalf("unexpected exit")
	}
}

func TestRunMainError(t *testing.T) {
	var out bytes.Buffer
	code := 0
	runMain([]string{"wuinstall", "unknown"}, &out, &out, func(exitCode int) {
		code = exitCode
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected error output, got %q", out.String())
	}
}

func TestRunMainExitCodes(t *testing.T) {
	orig := executeFunc
	t.Cleanup(func() { executeFunc = orig })

	exitErr := exec.Command("sh", "-c", "exit 7").Run()
	cases := []struct {
		name   string
		err    error
		code   int
		silent bool
	}{
		{name: "silent", err: &SilentExitError{Code: 128}, code: 128, silent: true},
		{name: "exec", err: exitErr, code: 7},
		{name: "cancelled", err: context.Canceled, code: 130},
		{name: "plain", err: errors.New("boom"), code: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			executeFunc = func([]string, io.Writer, io.Writer) error { return tc.err }
			var out bytes.Buffer
			code := 0
			runMain([]string{"wuinstall"}, &out, &out, func(c int) { code = c })
			if code != tc.code {
				t.Fatalf("expected exit %d, got %d", tc.code, code)
			}
			if tc.silent && out.Len() != 0 {
				t.Fatalf("expected no output, got %q", out.String())
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	origCommit, origDate := Commit, BuildDate
	t.Cleanup(func() { Commit, BuildDate = origCommit, origDate })

	Commit, BuildDate = "unknown", "unknown"
	if got := versionString(); got != Version {
		t.Fatalf("expected %q, got %q", Version, got)
	}
	Commit, BuildDate = "abc123", "2024-05-01"
	if got := versionString(); got != Version+" (commit abc123, built 2024-05-01)" {
		t.Fatalf("unexpected version string %q", got)
	}
}

func TestMainCallsExecute(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"wuinstall", "--version"}
	main()
}
