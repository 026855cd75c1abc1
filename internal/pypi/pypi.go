// Package pypi queries the package index JSON API for the latest published
// version of a package. Lookups go through the repo-local store cache when
// one is attached; cache failures are logged and degrade to fresh queries.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/requirements"
	"github.com/dukaforge/cicd/internal/store"
	"github.com/dukaforge/cicd/pkg/types"
)

// requestTimeout bounds a single index query.
const requestTimeout = 30 * time.Second

// maxAttempts retries transient transport failures once.
const maxAttempts = 2

// Client looks up package versions against an index such as
// https://pypi.org/pypi.
type Client struct {
	baseURL string
	httpc   *http.Client
	cache   *store.Store
	ttl     time.Duration
}

// NewClient returns a Client for the given index base URL. cache may be nil
// to disable caching.
func NewClient(baseURL string, cache *store.Store, ttl time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: requestTimeout},
		cache:   cache,
		ttl:     ttl,
	}
}

// indexResponse is the subset of the index JSON document we read.
type indexResponse struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
}

// LatestVersion returns the newest published version of the named package.
// The name returned by the index must canonically match the requested name.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	canonical := requirements.CanonicalName(name)

	if c.cache != nil {
		version, hit, err := c.cache.CachedLatest(canonical, c.ttl)
		if err != nil {
			logging.Warn("index cache lookup for %s failed: %v", canonical, err)
		} else if hit {
			logging.Debug("index cache hit for %s: %s", canonical, version)
			return version, nil
		}
	}

	version, err := c.fetchLatest(ctx, canonical)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.StoreLatest(canonical, version); err != nil {
			logging.Warn("caching index lookup for %s failed: %v", canonical, err)
		}
	}
	return version, nil
}

func (c *Client) fetchLatest(ctx context.Context, canonical string) (string, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, canonical)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("building index request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("querying index for %s: %w", canonical, err)
			logging.Debug("index query attempt %d for %s failed: %v", attempt, canonical, err)
			continue
		}

		version, err := parseResponse(resp, canonical)
		if err != nil {
			return "", err
		}
		return version, nil
	}
	return "", lastErr
}

func parseResponse(resp *http.Response, canonical string) (string, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("package %s not found on the index: %w", canonical, types.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("index returned %s for %s: %s", resp.Status, canonical, body)
	}

	var doc indexResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decoding index response for %s: %w", canonical, err)
	}

	if got := requirements.CanonicalName(doc.Info.Name); got != canonical {
		return "", fmt.Errorf("index returned package %q for requested %q: %w",
			doc.Info.Name, canonical, types.ErrUnableToResolve)
	}
	if doc.Info.Version == "" {
		return "", fmt.Errorf("index returned no version for %s: %w", canonical, types.ErrUnableToResolve)
	}
	return doc.Info.Version, nil
}
