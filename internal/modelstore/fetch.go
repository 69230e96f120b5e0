package modelstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	downloadTimeout = 60 * time.Second
	// minArtifactSize guards against saving an error page or an LFS
	// pointer instead of the binary artifact.
	minArtifactSize = 32
)

// EnsureModel makes sure the model artifact exists at dest, downloading
// it from url when missing. An existing file is left untouched.
func EnsureModel(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	if url == "" {
		return fmt.Errorf("model artifact %s is missing and no download URL is configured", dest)
	}
	return DownloadModel(ctx, url, dest)
}

// DownloadModel fetches a model artifact over HTTP and writes it to
// dest atomically. The response is sanity-checked so an HTML error page
// never ends up on disk posing as a model.
func DownloadModel(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", "alloy-gp-backend/1.0")

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read model body: %w", err)
	}
	if len(content) < minArtifactSize {
		return fmt.Errorf("downloaded model is unexpectedly small (%d bytes); check the URL or permissions", len(content))
	}
	if bytes.HasPrefix(bytes.TrimLeft(content, " \t\r\n"), []byte("<")) {
		return fmt.Errorf("downloaded content looks like HTML, not a model; verify the URL is public")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename model: %w", err)
	}
	return nil
}
