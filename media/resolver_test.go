package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/multierr"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func dataURI(t *testing.T, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func TestResolveDataURI(t *testing.T) {
	r := NewResolver()
	raster, err := r.Resolve(context.Background(), dataURI(t, 10, 6))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if raster.Width != 10 || raster.Height != 6 {
		t.Fatalf("raster %dx%d, want 10x6", raster.Width, raster.Height)
	}
	if !raster.Valid() {
		t.Fatal("raster should be valid")
	}
}

func TestResolveFetchesOncePerURI(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	r := NewResolver()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), srv.URL+"/photo.png"); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one upstream fetch, got %d", got)
	}
}

func TestResolveFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))
	defer srv.Close()

	r := NewResolver()
	cases := []string{
		srv.URL + "/missing.jpg",
		"ftp://example.com/photo.jpg",
		"data:image/png;base64,!!!notbase64",
		"data:text/plain,hello",
	}
	for _, uri := range cases {
		if _, err := r.Resolve(context.Background(), uri); err == nil {
			t.Errorf("Resolve(%q) should fail", uri)
		}
	}
}

func TestResolveUnsupportedEncoding(t *testing.T) {
	r := NewResolver()
	uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg></svg>"))
	if _, err := r.Resolve(context.Background(), uri); err == nil {
		t.Fatal("svg payload should be rejected as unsupported")
	}
}

func TestResolveDownscalesOversizedRaster(t *testing.T) {
	r := NewResolver(WithMaxRasterWidth(32))
	raster, err := r.Resolve(context.Background(), dataURI(t, 64, 16))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if raster.Width != 32 {
		t.Fatalf("raster width %d, want downscaled to 32", raster.Width)
	}
	if raster.Height != 8 {
		t.Fatalf("raster height %d, want aspect-preserving 8", raster.Height)
	}
}

func TestPrefetchAggregatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/bad.jpg" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	r := NewResolver(WithWorkers(3))
	refs := []checklist.MediaRef{
		{URI: srv.URL + "/a.jpg", Type: checklist.MediaPhoto},
		{URI: srv.URL + "/bad.jpg", Type: checklist.MediaPhoto},
		{URI: srv.URL + "/b.jpg", Type: checklist.MediaPhoto},
		{URI: srv.URL + "/clip.mp4", Type: checklist.MediaVideo}, // never fetched
	}
	err := r.Prefetch(context.Background(), refs)
	if err == nil {
		t.Fatal("expected aggregated prefetch error")
	}
	if n := len(multierr.Errors(err)); n != 1 {
		t.Fatalf("expected 1 failure, got %d: %v", n, err)
	}
	// Successful fetches are cached and must not error afterwards.
	if _, err := r.Resolve(context.Background(), srv.URL+"/a.jpg"); err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
}

func TestCollectRefsSkipsExcludedEntries(t *testing.T) {
	items := []checklist.Item{{
		ID: "i1",
		Entries: []checklist.Entry{
			{IncludeInReport: true, Media: []checklist.MediaRef{{URI: "a", Type: checklist.MediaPhoto}}},
			{IncludeInReport: false, Media: []checklist.MediaRef{{URI: "b", Type: checklist.MediaPhoto}}},
		},
		Tasks: []checklist.Task{{
			ID: "t1",
			Entries: []checklist.Entry{
				{IncludeInReport: true, Media: []checklist.MediaRef{{URI: "c", Type: checklist.MediaVideo}}},
			},
		}},
	}}
	refs := CollectRefs(items)
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d: %v", len(refs), refs)
	}
	if refs[0].URI != "a" || refs[1].URI != "c" {
		t.Fatalf("unexpected refs order: %v", refs)
	}
}
