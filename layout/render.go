package layout

import (
	"context"
	"errors"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/config"
	"github.com/nexstacksg/property-stewards-app-sub001/observability"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

// ImageResolver resolves a media URI into a raster buffer. Satisfied by
// media.Resolver; a nil resolver degrades every tile to a placeholder.
type ImageResolver interface {
	Resolve(ctx context.Context, uri string) (*surface.Raster, error)
}

var errNoResolver = errors.New("no image resolver configured")

var (
	colorText        = surface.Color{A: 1}
	colorBorder      = surface.Color{R: 0.45, G: 0.45, B: 0.45, A: 1}
	colorHeaderFill  = surface.Color{R: 0.88, G: 0.91, B: 0.94, A: 1}
	colorBandFill    = surface.Color{R: 0.93, G: 0.95, B: 0.97, A: 0.5}
	colorUnavailable = surface.Color{R: 0.85, G: 0.2, B: 0.2, A: 1}
	colorVideoTile   = surface.Color{R: 0.3, G: 0.3, B: 0.3, A: 1}
	colorVideoGlyph  = surface.Color{R: 1, G: 1, B: 1, A: 1}
)

// RowStyle configures how one row is drawn.
type RowStyle struct {
	Header     bool
	Background *surface.Color
	Merge      bool
}

// Renderer draws single rows and media chunks against the surface.
// It is scoped to one report render; the context covers lazy image
// resolution during drawing.
type Renderer struct {
	ctx  context.Context
	sfc  surface.Surface
	res  ImageResolver
	prof config.Profile
	log  observability.Logger
}

// NewRenderer creates a renderer for one render pass.
func NewRenderer(ctx context.Context, sfc surface.Surface, res ImageResolver, prof config.Profile, log observability.Logger) *Renderer {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Renderer{ctx: ctx, sfc: sfc, res: res, prof: prof, log: log}
}

func (r *Renderer) contentWidth() float64 { return r.sfc.PageWidth() - 2*r.prof.MarginX }

func (r *Renderer) columnWidths() [4]float64 {
	var w [4]float64
	cw := r.contentWidth()
	for i, f := range r.prof.ColumnFractions {
		w[i] = cw * f
	}
	return w
}

// RowHeight computes the vertical space a row needs. It must be called
// (directly or via DrawRow) before drawing so the paginator can reserve
// space; it performs no draw calls.
func (r *Renderer) RowHeight(cells []Cell) float64 {
	widths := r.columnWidths()
	maxContent := 0.0
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		inner := widths[i] - 2*r.prof.CellPadding
		if h := r.cellContentHeight(cell, inner); h > maxContent {
			maxContent = h
		}
	}
	total := maxContent + 2*r.prof.CellPadding
	if total < r.prof.MinRowHeight {
		total = r.prof.MinRowHeight
	}
	return total
}

func (r *Renderer) cellContentHeight(cell Cell, innerWidth float64) float64 {
	total := 0.0
	for _, seg := range cell.Segments {
		textH := 0.0
		if seg.Text != "" {
			textH = r.sfc.HeightOfString(seg.Text, innerWidth, r.prof.BodyFontSize)
		}
		mediaH := 0.0
		if n := seg.MediaCount(); n > 0 {
			plan := PlanGrid(r.sfc, r.prof, n, seg.Captions, innerWidth, r.segmentTileHeight(seg))
			mediaH = plan.TotalHeight
		}
		total += textH + mediaH
		if textH > 0 && mediaH > 0 {
			total += r.prof.TileGutter
		}
	}
	return total
}

func (r *Renderer) segmentTileHeight(seg Segment) float64 {
	if len(seg.Photos) > 0 {
		return r.prof.PhotoTileHeight
	}
	return r.prof.VideoTileHeight
}

// DrawRow draws one table row at y and returns the consumed height.
// Merged rows get a single outer border with no inner separators;
// otherwise every cell is individually bordered and optionally filled.
func (r *Renderer) DrawRow(y float64, cells []Cell, style RowStyle) float64 {
	h := r.RowHeight(cells)
	widths := r.columnWidths()

	bg := style.Background
	if style.Header {
		bg = &colorHeaderFill
	}

	if style.Merge {
		if bg != nil {
			r.sfc.Rect(r.prof.MarginX, y, r.contentWidth(), h, surface.RectOptions{Fill: true, FillColor: *bg})
		}
		r.sfc.Rect(r.prof.MarginX, y, r.contentWidth(), h, surface.RectOptions{Stroke: true, StrokeColor: colorBorder, LineWidth: 0.5})
	}

	x := r.prof.MarginX
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if !style.Merge {
			if bg != nil {
				r.sfc.Rect(x, y, widths[i], h, surface.RectOptions{Fill: true, FillColor: *bg})
			}
			r.sfc.Rect(x, y, widths[i], h, surface.RectOptions{Stroke: true, StrokeColor: colorBorder, LineWidth: 0.5})
		}
		r.drawCell(x, y, widths[i], cell)
		x += widths[i]
	}
	return h
}

func (r *Renderer) drawCell(x, y, width float64, cell Cell) {
	inner := width - 2*r.prof.CellPadding
	curY := y + r.prof.CellPadding
	for _, seg := range cell.Segments {
		if seg.Text != "" {
			r.sfc.Text(seg.Text, x+r.prof.CellPadding, curY, surface.TextOptions{
				FontSize: r.prof.BodyFontSize,
				Color:    colorText,
				Width:    inner,
				Align:    surface.AlignLeft,
			})
			curY += r.sfc.HeightOfString(seg.Text, inner, r.prof.BodyFontSize)
		}
		if n := seg.MediaCount(); n > 0 {
			if seg.Text != "" {
				curY += r.prof.TileGutter
			}
			tileH := r.segmentTileHeight(seg)
			plan := PlanGrid(r.sfc, r.prof, n, seg.Captions, inner, tileH)
			curY += r.drawTiles(x+r.prof.CellPadding, curY, segmentTiles(seg), plan, tileH)
		}
	}
}

func segmentTiles(seg Segment) []MediaTile {
	tiles := make([]MediaTile, 0, seg.MediaCount())
	add := func(m checklist.MediaRef) {
		caption := m.Caption
		if i := len(tiles); i < len(seg.Captions) && seg.Captions[i] != "" {
			caption = seg.Captions[i]
		}
		tiles = append(tiles, MediaTile{Ref: m, Caption: caption})
	}
	for _, m := range seg.Photos {
		add(m)
	}
	for _, m := range seg.Videos {
		add(m)
	}
	return tiles
}

// PlanBlock plans a media block's tile grid at full content width.
func (r *Renderer) PlanBlock(tiles []MediaTile, tileHeight float64) GridPlan {
	captions := make([]string, len(tiles))
	for i, t := range tiles {
		captions[i] = t.Caption
	}
	return PlanGrid(r.sfc, r.prof, len(tiles), captions, r.contentWidth(), tileHeight)
}

// DrawMediaChunk draws a whole number of tile rows at full content width
// starting at y and returns the consumed height.
func (r *Renderer) DrawMediaChunk(y float64, tiles []MediaTile, tileHeight float64) float64 {
	plan := r.PlanBlock(tiles, tileHeight)
	return r.drawTiles(r.prof.MarginX, y, tiles, plan, tileHeight)
}

// BlockTextHeight measures a media block's leading text line.
func (r *Renderer) BlockTextHeight(s string) float64 {
	if s == "" {
		return 0
	}
	return r.sfc.HeightOfString(s, r.contentWidth(), r.prof.BodyFontSize)
}

// DrawBlockText draws a media block's leading text and returns its height.
func (r *Renderer) DrawBlockText(y float64, s string) float64 {
	r.sfc.Text(s, r.prof.MarginX, y, surface.TextOptions{
		FontSize: r.prof.BodyFontSize,
		Color:    colorText,
		Width:    r.contentWidth(),
		Align:    surface.AlignLeft,
	})
	return r.BlockTextHeight(s)
}

func (r *Renderer) drawTiles(x, y float64, tiles []MediaTile, plan GridPlan, tileHeight float64) float64 {
	curY := y
	for row := 0; row < plan.Rows(); row++ {
		start := row * plan.Columns
		end := min(start+plan.Columns, len(tiles))
		tx := x
		for _, tile := range tiles[start:end] {
			r.drawTile(tx, curY, plan.TileWidth, tileHeight, tile)
			if tile.Caption != "" {
				r.sfc.Text(tile.Caption, tx, curY+tileHeight+r.prof.CaptionGap, surface.TextOptions{
					FontSize: r.prof.CaptionFontSize,
					Color:    colorText,
					Width:    plan.TileWidth,
					Align:    surface.AlignLeft,
				})
			}
			tx += plan.TileWidth + r.prof.TileGutter
		}
		curY += plan.RowHeights[row]
		if row < plan.Rows()-1 {
			curY += r.prof.TileGutter
		}
	}
	return plan.TotalHeight
}

// drawTile draws one tile: a resolved photo, a video placeholder, or the
// "unavailable" placeholder when resolution or drawing fails. Image
// failures never propagate out of row drawing.
func (r *Renderer) drawTile(x, y, w, h float64, tile MediaTile) {
	if tile.Ref.Type == checklist.MediaVideo {
		vh := min(h, r.prof.VideoTileHeight)
		r.drawVideoTile(x, y+(h-vh)/2, w, vh)
		return
	}

	var (
		raster *surface.Raster
		err    error
	)
	if r.res == nil {
		err = errNoResolver
	} else {
		raster, err = r.res.Resolve(r.ctx, tile.Ref.URI)
	}
	if err == nil {
		err = r.sfc.Image(raster, x, y, surface.ImageOptions{Width: w, Height: h, Fit: true})
	}
	if err != nil {
		r.log.Debug("tile degraded to placeholder",
			observability.String("uri", tile.Ref.URI),
			observability.Error("err", err))
		r.drawUnavailableTile(x, y, w, h)
	}
}

func (r *Renderer) drawUnavailableTile(x, y, w, h float64) {
	r.sfc.Rect(x, y, w, h, surface.RectOptions{Stroke: true, StrokeColor: colorUnavailable, LineWidth: 1})
	r.sfc.Text("Photo unavailable", x+2, y+h/2-r.prof.CaptionFontSize/2, surface.TextOptions{
		FontSize: r.prof.CaptionFontSize,
		Color:    colorUnavailable,
		Width:    w - 4,
		Align:    surface.AlignCenter,
	})
}

func (r *Renderer) drawVideoTile(x, y, w, h float64) {
	r.sfc.Rect(x, y, w, h, surface.RectOptions{Fill: true, FillColor: colorVideoTile, CornerRadius: 3})
	r.sfc.Circle(x+w/2, y+h/2, min(w, h)/5, surface.RectOptions{Fill: true, FillColor: colorVideoGlyph})
}
