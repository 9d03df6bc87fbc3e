package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
)

// DownloadImage fetches an image URL to the given path, creating parent
// directories as needed.
func DownloadImage(ctx context.Context, client *http.Client, url, path string) error {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure image directory: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("image fetch returned status %d", resp.StatusCode)
			}

			file, err := os.Create(path)
			if err != nil {
				return err
			}
			if _, err := io.Copy(file, resp.Body); err != nil {
				_ = file.Close()
				return err
			}
			return file.Close()
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
}
