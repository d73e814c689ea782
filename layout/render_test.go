package layout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/config"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

// stubResolver serves a fixed raster for every URI, or fails when broken.
type stubResolver struct {
	broken bool
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, uri string) (*surface.Raster, error) {
	s.calls++
	if s.broken {
		return nil, errors.New("upstream unavailable")
	}
	return &surface.Raster{Width: 1, Height: 1, Data: []byte{1, 2, 3}}, nil
}

func newTestRenderer(rec *surface.Recorder, res ImageResolver) *Renderer {
	return NewRenderer(context.Background(), rec, res, config.Default(), nil)
}

func TestRowHeightMinimum(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	if h := r.RowHeight([]Cell{{}, {}, {}, {}}); h != config.Default().MinRowHeight {
		t.Fatalf("empty row height = %v, want floor %v", h, config.Default().MinRowHeight)
	}
}

func TestRowHeightGrowsWithText(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	long := strings.Repeat("water damage along the cornice ", 6)
	h := r.RowHeight([]Cell{{}, {}, Text(long), {}})
	if h <= config.Default().MinRowHeight {
		t.Fatalf("long text should exceed the minimum row height, got %v", h)
	}
}

func TestRowHeightIncludesSegmentMedia(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	cell := Cell{Segments: []Segment{{
		Text:   "two photos attached",
		Photos: photoRefs("x", "y"),
	}}}
	h := r.RowHeight([]Cell{cell, {}, {}, {}})
	p := config.Default()
	if h < p.PhotoTileHeight+2*p.CellPadding {
		t.Fatalf("row height %v does not reserve space for the media grid", h)
	}
}

func TestDrawRowBorders(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	cells := []Cell{Text("a"), Text("b"), Text("c"), Text("d")}

	r.DrawRow(40, cells, RowStyle{})
	if got := rec.Count(surface.OpRect); got != 4 {
		t.Fatalf("plain row should stroke 4 cell borders, got %d rects", got)
	}

	rec2 := surface.NewRecorder(595, 842)
	r2 := newTestRenderer(rec2, nil)
	r2.DrawRow(40, cells, RowStyle{Merge: true})
	if got := rec2.Count(surface.OpRect); got != 1 {
		t.Fatalf("merged row should draw one outer border, got %d rects", got)
	}
}

func TestDrawRowBackgroundFill(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	bg := colorBandFill
	r.DrawRow(40, []Cell{Text("a"), {}, {}, {}}, RowStyle{Background: &bg})
	fills := 0
	for _, op := range rec.Ops {
		if op.Kind == surface.OpRect && op.Fill {
			fills++
		}
	}
	if fills != 4 {
		t.Fatalf("banded row should fill each cell, got %d fills", fills)
	}
}

func TestDrawRowHeaderFill(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	r.DrawRow(40, headerCells(), RowStyle{Header: true})
	hasFill := false
	for _, op := range rec.Ops {
		if op.Kind == surface.OpRect && op.Fill {
			hasFill = true
		}
	}
	if !hasFill {
		t.Fatal("header row must be filled")
	}
}

func TestDrawTilePlaceholderOnFailure(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, &stubResolver{broken: true})
	tiles := []MediaTile{{Ref: checklist.MediaRef{URI: "x.jpg", Type: checklist.MediaPhoto}}}
	r.DrawMediaChunk(100, tiles, 100)

	if rec.Count(surface.OpImage) != 0 {
		t.Fatal("failed resolve must not draw an image")
	}
	found := false
	for _, op := range rec.Ops {
		if op.Kind == surface.OpText && op.Text == "Photo unavailable" {
			found = true
		}
	}
	if !found {
		t.Fatal("placeholder caption missing")
	}
	if rec.Count(surface.OpRect) == 0 {
		t.Fatal("placeholder border missing")
	}
}

func TestDrawTileNilResolver(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, nil)
	tiles := []MediaTile{{Ref: checklist.MediaRef{URI: "x.jpg", Type: checklist.MediaPhoto}}}
	r.DrawMediaChunk(100, tiles, 100)
	if rec.Count(surface.OpImage) != 0 {
		t.Fatal("nil resolver must degrade to a placeholder")
	}
}

func TestDrawVideoTile(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, &stubResolver{})
	tiles := []MediaTile{{Ref: checklist.MediaRef{URI: "clip.mp4", Type: checklist.MediaVideo}}}
	r.DrawMediaChunk(100, tiles, config.Default().VideoTileHeight)

	if rec.Count(surface.OpImage) != 0 {
		t.Fatal("video tiles never fetch or draw image bytes")
	}
	if rec.Count(surface.OpCircle) != 1 {
		t.Fatal("video placeholder should carry a play glyph")
	}
}

func TestDrawMediaChunkHeightMatchesPlan(t *testing.T) {
	rec := surface.NewRecorder(595, 842)
	r := newTestRenderer(rec, &stubResolver{})
	tiles := make([]MediaTile, 6)
	for i := range tiles {
		tiles[i] = MediaTile{Ref: checklist.MediaRef{URI: "p", Type: checklist.MediaPhoto}}
	}
	plan := r.PlanBlock(tiles, 100)
	if got := r.DrawMediaChunk(100, tiles, 100); got != plan.TotalHeight {
		t.Fatalf("consumed %v, plan said %v", got, plan.TotalHeight)
	}
	if rec.Count(surface.OpImage) != 6 {
		t.Fatalf("expected 6 image draws, got %d", rec.Count(surface.OpImage))
	}
}
