// Package catalog loads menu snapshots exported from the hosted backend.
package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

// Loader fetches one or more menu snapshot documents and merges them.
// A snapshot is a JSON array of menu items, or an object with an "items"
// array, optionally gzip-compressed.
type Loader struct {
	client   *resty.Client
	validate *validator.Validate

	mu      sync.RWMutex
	sources []string
	loaded  int
	skipped int
}

// sourceResult holds the result of loading a single source
type sourceResult struct {
	index   int
	items   []models.MenuItem
	skipped int
	err     error
}

// NewLoader creates a loader with the given HTTP timeout
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		client:   resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadFromURLs downloads all snapshots concurrently. Any failed source fails the load.
// Later sources override earlier ones for the same item id.
func (l *Loader) LoadFromURLs(ctx context.Context, urls []string) ([]models.MenuItem, error) {
	return l.loadAll(ctx, urls, l.fetchURL)
}

// LoadFromFiles reads snapshots from local files concurrently
func (l *Loader) LoadFromFiles(ctx context.Context, paths []string) ([]models.MenuItem, error) {
	return l.loadAll(ctx, paths, func(ctx context.Context, path string) ([]byte, error) {
		return os.ReadFile(path)
	})
}

func (l *Loader) loadAll(ctx context.Context, sources []string, fetch func(context.Context, string) ([]byte, error)) ([]models.MenuItem, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no catalog sources provided")
	}

	resultChan := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			data, err := fetch(ctx, source)
			if err != nil {
				resultChan <- sourceResult{index: index, err: err}
				return
			}
			items, skipped, err := l.parse(data)
			resultChan <- sourceResult{index: index, items: items, skipped: skipped, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// collect keeping source order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load catalog source %d: %w", i+1, result.err)
		}
	}

	merged := make([]models.MenuItem, 0)
	position := make(map[string]int)
	skipped := 0
	for _, result := range results {
		skipped += result.skipped
		for _, item := range result.items {
			if at, ok := position[item.ID]; ok {
				merged[at] = item
				continue
			}
			position[item.ID] = len(merged)
			merged = append(merged, item)
		}
	}

	l.mu.Lock()
	l.sources = append([]string(nil), sources...)
	l.loaded = len(merged)
	l.skipped = skipped
	l.mu.Unlock()

	return merged, nil
}

// fetchURL downloads a snapshot
func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// parse decodes a snapshot, dropping items that fail validation
func (l *Loader) parse(data []byte) ([]models.MenuItem, int, error) {
	data, err := maybeGunzip(data)
	if err != nil {
		return nil, 0, err
	}

	trimmed := bytes.TrimSpace(data)
	var items []models.MenuItem
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &items)
	} else {
		var doc struct {
			Items []models.MenuItem `json:"items"`
		}
		err = json.Unmarshal(trimmed, &doc)
		items = doc.Items
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	valid := make([]models.MenuItem, 0, len(items))
	skipped := 0
	for _, item := range items {
		if err := l.validate.Struct(item); err != nil {
			skipped++
			continue
		}
		if err := pricing.ValidatePrices(item); err != nil {
			skipped++
			continue
		}
		valid = append(valid, item)
	}
	return valid, skipped, nil
}

func maybeGunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("error reading gzip snapshot: %w", err)
	}
	return out, nil
}

// GetStats returns statistics about the last successful load
func (l *Loader) GetStats() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return map[string]interface{}{
		"total_sources": len(l.sources),
		"sources":       append([]string(nil), l.sources...),
		"total_items":   l.loaded,
		"skipped_items": l.skipped,
	}
}
