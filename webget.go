package histret

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/etnz/histret/cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// This file contains http utils shared by all source adapters to deal
// with remote datasets.

// Network operations are bounded by a fixed deadline and a run-wide rate
// limiter; there is no automatic retry. The persistent cache is the
// cross-run retry-avoidance mechanism.
const fetchTimeout = 60 * time.Second

// Getter downloads remote payloads through the cache store: a valid
// cached entry short-circuits the network entirely.
type Getter struct {
	store   *cache.Store
	client  *http.Client
	limiter *rate.Limiter
}

// NewGetter returns a Getter backed by the given store.
func NewGetter(store *cache.Store) *Getter {
	return &Getter{
		store:   store,
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Get returns the payload at url, from cache when fresh, from the
// network otherwise. Network failures come back as a *FetchError of kind
// Network tagged with source.
func (g *Getter) Get(ctx context.Context, source, url string) ([]byte, error) {
	key := cache.Key(url)
	if payload, ok := g.store.Get(key); ok {
		return payload, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, Errf(Network, source, "rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Errf(Network, source, "bad request %q: %w", url, err)
	}
	// Some academic hosts reject the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	logrus.Infof("downloading %s", url)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, Errf(Network, source, "cannot GET %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, Errf(Network, source, "cannot GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Errf(Network, source, "reading %q: %w", url, err)
	}

	if err := g.store.Put(key, payload); err != nil {
		// A failed cache write only costs a future re-download.
		logrus.Warnf("cache write err (ignored): %v", err)
	}
	return payload, nil
}

// GetJSON fetches url and unmarshals the JSON payload into data.
func (g *Getter) GetJSON(ctx context.Context, source, url string, data any) error {
	payload, err := g.Get(ctx, source, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, data); err != nil {
		return Errf(Malformed, source, "decoding %q: %w", url, err)
	}
	return nil
}
