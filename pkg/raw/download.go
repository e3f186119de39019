package raw

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const (
	userAgent = "veselinovanegex-cli"
	// maxBodySize caps downloads; the workbook and languoid export are a few MB.
	maxBodySize = 64 * 1024 * 1024
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// EnsureFile checks if a file exists at path.
// If not and sourceURL is set, it downloads it; with no URL a missing file is an error.
func EnsureFile(ctx context.Context, path, sourceURL string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if sourceURL == "" {
		return fmt.Errorf("%s not found and no download URL configured", path)
	}

	slog.Info("File not found, downloading", "path", path, "url", sourceURL)
	return Download(ctx, sourceURL, path)
}

// Download fetches sourceURL into destPath. The file is written to a temporary
// name first so an interrupted download never leaves a truncated file behind.
func Download(ctx context.Context, sourceURL, destPath string) error {
	body, err := fetch(ctx, sourceURL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	tmp := destPath + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return os.Rename(tmp, destPath)
}

// Description is the readable text of a landing page.
type Description struct {
	Title string
	Text  string
}

// FetchDescription downloads pageURL and extracts its main text.
func FetchDescription(ctx context.Context, pageURL string) (*Description, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	body, err := fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	return &Description{
		Title: strings.TrimSpace(article.Title),
		Text:  strings.TrimSpace(article.TextContent),
	}, nil
}

func fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s failed: %s", sourceURL, resp.Status)
	}
	if resp.ContentLength > maxBodySize {
		return nil, fmt.Errorf("Content-Length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}
	return body, nil
}
