// Package media fetches and normalizes external photo references into
// drawing-surface raster buffers. Results are memoized per resolver, so
// one resolver instance is scoped to exactly one report render; a photo
// referenced at multiple grouping levels is fetched once.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nexstacksg/property-stewards-app-sub001/observability"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxWidth    = 1600
	defaultWorkers     = 4
	maxPayloadBytes    = 32 << 20
	dataURIPrefix      = "data:"
	base64HeaderSuffix = ";base64"
)

// Resolver resolves media URIs into raster buffers with a per-render
// cache. All failures are soft: callers render a placeholder tile for
// any URI that returns an error.
type Resolver struct {
	client   *http.Client
	log      observability.Logger
	maxWidth int
	workers  int

	mu    sync.Mutex
	cache map[string]*fetchResult
}

type fetchResult struct {
	once   sync.Once
	raster *surface.Raster
	err    error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the HTTP client used for fetchable references.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithMaxRasterWidth bounds decoded raster width in pixels.
func WithMaxRasterWidth(px int) Option {
	return func(r *Resolver) { r.maxWidth = px }
}

// WithWorkers sets the prefetch fan-out (values below 1 are clamped).
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// NewResolver creates a resolver for one report render.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{Timeout: defaultTimeout},
		log:      observability.NopLogger{},
		maxWidth: defaultMaxWidth,
		workers:  defaultWorkers,
		cache:    make(map[string]*fetchResult),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the raster for uri, fetching at most once per resolver
// lifetime. Concurrent callers for the same URI share one fetch.
func (r *Resolver) Resolve(ctx context.Context, uri string) (*surface.Raster, error) {
	ent := r.entry(uri)
	ent.once.Do(func() {
		ent.raster, ent.err = r.fetch(ctx, uri)
		if ent.err != nil {
			r.log.Warn("media resolve failed",
				observability.String("uri", uri),
				observability.Error("err", ent.err))
		}
	})
	return ent.raster, ent.err
}

func (r *Resolver) entry(uri string) *fetchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.cache[uri]
	if !ok {
		ent = &fetchResult{}
		r.cache[uri] = ent
	}
	return ent
}

func (r *Resolver) fetch(ctx context.Context, uri string) (*surface.Raster, error) {
	switch {
	case strings.HasPrefix(uri, dataURIPrefix):
		data, err := decodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		return decodeRaster(data, r.maxWidth)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		data, err := r.get(ctx, uri)
		if err != nil {
			return nil, err
		}
		return decodeRaster(data, r.maxWidth)
	default:
		return nil, fmt.Errorf("unsupported media URI scheme in %q", uri)
	}
}

func (r *Resolver) get(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("fetch %s: payload exceeds %d bytes", uri, maxPayloadBytes)
	}
	return data, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	header := uri[len(dataURIPrefix):comma]
	if !strings.HasSuffix(header, base64HeaderSuffix) {
		return nil, fmt.Errorf("unsupported data URI encoding %q", header)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return data, nil
}
