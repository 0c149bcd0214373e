// Package netprobe checks outbound connectivity before the install starts.
package netprobe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Prober issues a single bounded HEAD request. The result is advisory: a failure
// only produces a warning, since later downloads carry their own retries.
type Prober struct {
	Client  *http.Client
	URL     string
	Timeout time.Duration
	Out     io.Writer
}

// Probe reports whether the probe URL answered within the timeout.
func (p Prober) Probe(ctx context.Context) bool {
	err := p.Check(ctx)
	if err != nil {
		p.printf(messages.ProbeWarningFmt, p.URL, err)
		return false
	}
	p.printf(messages.ProbeOKFmt, p.URL)
	return true
}

// Check performs the request and returns the failure, if any.
func (p Prober) Check(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf(messages.ProbeStatusFmt, resp.Status)
	}
	return nil
}

func (p Prober) printf(format string, args ...any) {
	if p.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(p.Out, format, args...)
}
