// Package runlog tees install output to the console and a persistent log file.
package runlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Log is the install log. Everything written through it reaches both the console and the file.
type Log struct {
	path    string
	file    *os.File
	console io.Writer

	mu     sync.Mutex
	writer io.Writer
	now    func() time.Time
}

// Open creates (or truncates) the log file at path and tees writes to console.
// A nil console writes to the file only.
func Open(path string, console io.Writer) (*Log, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.RunlogOpenFmt, path, err)
	}
	var w io.Writer = file
	if console != nil {
		w = io.MultiWriter(console, file)
	}
	return &Log{path: path, file: file, console: console, writer: w, now: time.Now}, nil
}

// Write implements io.Writer and is safe for concurrent use.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Write(p)
}

// Printf writes a formatted message to the console as-is and to the file with a
// timestamp prefix.
func (l *Log) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.console != nil {
		_, _ = io.WriteString(l.console, msg)
	}
	_, _ = fmt.Fprintf(l.file, "[%s] %s", l.now().Format(time.RFC3339), msg)
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Close flushes and closes the log file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// Tail returns the last n lines of the file at path.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(messages.RunlogReadFmt, path, err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, 0, n)
	start := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[start] = scanner.Text()
		start = (start + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.RunlogReadFmt, path, err)
	}
	out := make([]string, 0, len(ring))
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}
