// Package assets downloads optional large model files into the application tree.
package assets

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/retry"
)

// Spec is one asset to fetch.
type Spec struct {
	URL  string
	Dest string
}

// Result describes what DownloadIfMissing did.
type Result struct {
	Dest    string
	Skipped bool
	Bytes   int64
	// Digest is the BLAKE3 hex digest of the downloaded bytes. It is recorded for
	// the install receipt and never checked against anything.
	Digest string
}

// Downloader fetches assets over HTTP with retries.
type Downloader struct {
	Client *http.Client
	Retry  retry.Runner
	Out    io.Writer
}

// DownloadIfMissing fetches spec.URL to spec.Dest unless spec.Dest already exists.
// An existing file counts as complete regardless of its size or content, and no
// request is made for it.
func (d Downloader) DownloadIfMissing(ctx context.Context, spec Spec) (Result, error) {
	if _, err := os.Lstat(spec.Dest); err == nil {
		d.printf(messages.AssetsPresentFmt, spec.Dest)
		return Result{Dest: spec.Dest, Skipped: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{}, fmt.Errorf(messages.AssetsStatFmt, spec.Dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(spec.Dest), 0o755); err != nil {
		return Result{}, fmt.Errorf(messages.AssetsCreateDirFmt, spec.Dest, err)
	}

	d.printf(messages.AssetsDownloadingFmt, spec.URL, spec.Dest)
	var result Result
	err := d.Retry.Do(ctx, "download "+filepath.Base(spec.Dest), func(ctx context.Context, _ int) error {
		r, err := d.Fetch(ctx, spec.URL, spec.Dest)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	d.printf(messages.AssetsDownloadedFmt, spec.Dest, result.Bytes)
	return result, nil
}

// Fetch downloads url into dest through a temp file in the same directory, so an
// interrupted transfer never leaves a file at dest.
func (d Downloader) Fetch(ctx context.Context, url string, dest string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf(messages.AssetsRequestFmt, url, err)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf(messages.AssetsFetchFmt, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf(messages.AssetsStatusFmt, url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return Result{}, fmt.Errorf(messages.AssetsCreateTempFmt, dest, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	hasher := blake3.New()
	n, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf(messages.AssetsWriteFmt, dest, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf(messages.AssetsWriteFmt, dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return Result{}, fmt.Errorf(messages.AssetsCommitFmt, dest, err)
	}
	committed = true
	return Result{Dest: dest, Bytes: n, Digest: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// DigestFile returns the BLAKE3 hex digest of the file at path.
func DigestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()
	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (d Downloader) printf(format string, args ...any) {
	if d.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(d.Out, format, args...)
}
