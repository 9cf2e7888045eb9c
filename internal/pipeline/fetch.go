package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"worldbank-pipeline/internal/model"
)

// ErrNetwork marks HTTP request failures and non-success response statuses.
// These are fatal: a failed fetch aborts the run with no retry.
var ErrNetwork = errors.New("network failure")

// ------------------- Fetch Stage -------------------

// FetchSources downloads the indicator and dictionary CSVs in parallel.
// A download is skipped when the destination file already exists; presence
// alone counts as valid, there is no checksum or staleness check, so a file
// left behind by a crashed write will be trusted on the next run.
func FetchSources(ctx context.Context, cfg model.Config) error {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	targets := []struct {
		url  string
		dest string
	}{
		{cfg.IndicatorURL, cfg.IndicatorPath()},
		{cfg.DictionaryURL, cfg.DictionaryPath()},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, t := range targets {
		wg.Add(1)
		go func(i int, url, dest string) {
			defer wg.Done()
			errs[i] = fetchFile(ctx, client, url, dest)
		}(i, t.url, t.dest)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// fetchFile issues a single GET and writes the response bytes verbatim.
func fetchFile(ctx context.Context, client *http.Client, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		fmt.Printf("📦 Using cached file: %s\n", dest)
		return nil
	}

	fmt.Printf("⬇️ Downloading %s\n", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: building request for %s: %v", ErrNetwork, url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: GET %s returned status %d", ErrNetwork, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body of %s: %v", ErrNetwork, url, err)
	}

	if err := os.WriteFile(dest, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	fmt.Printf("⬇️ Saved %d bytes to %s\n", len(body), dest)
	return nil
}
