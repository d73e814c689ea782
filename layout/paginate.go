package layout

import (
	"github.com/nexstacksg/property-stewards-app-sub001/config"
	"github.com/nexstacksg/property-stewards-app-sub001/observability"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

// Paginator drives the row stream onto pages. It owns the only mutable
// layout state: the vertical cursor, the current page and the
// background-band continuity tracking.
type Paginator struct {
	sfc  surface.Surface
	rend *Renderer
	prof config.Profile
	log  observability.Logger

	y          float64
	pageStartY float64
	pages      int

	band    bool
	haveKey bool
	lastKey string
}

// NewPaginator creates a paginator; the cursor starts at the top margin
// of the current page.
func NewPaginator(sfc surface.Surface, rend *Renderer, prof config.Profile, log observability.Logger) *Paginator {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Paginator{
		sfc:   sfc,
		rend:  rend,
		prof:  prof,
		log:   log,
		y:     prof.MarginTop,
		pages: 1,
	}
}

// breakPage forces a page break before any content is placed. The
// header is not drawn, so a heading may still precede it.
func (p *Paginator) breakPage() {
	p.sfc.AddPage()
	p.pages++
	p.y = p.prof.MarginTop
}

// limit is the hard page-bottom boundary: nothing may be drawn past
// page height minus the bottom margin and the reserved footer band.
func (p *Paginator) limit() float64 {
	return p.sfc.PageHeight() - p.prof.MarginX - p.prof.FooterReserved
}

func (p *Paginator) remaining() float64 { return p.limit() - p.y }

// atTop reports whether the cursor sits directly under the page header,
// i.e. no further page break can free up space.
func (p *Paginator) atTop() bool { return p.y == p.pageStartY }

func (p *Paginator) newPage() {
	p.sfc.AddPage()
	p.pages++
	p.y = p.prof.MarginTop
	p.drawHeader()
}

func headerCells() []Cell {
	return []Cell{Text("Location"), Text("Item"), Text("Subtask"), Text("Condition")}
}

func (p *Paginator) drawHeader() {
	p.y += p.rend.DrawRow(p.y, headerCells(), RowStyle{Header: true})
	p.pageStartY = p.y
}

// Run draws the header row and then places every row descriptor.
func (p *Paginator) Run(rows []RowDescriptor) {
	p.drawHeader()
	for _, row := range rows {
		p.place(row)
	}
}

func (p *Paginator) place(row RowDescriptor) {
	bg := p.background(row)

	if row.Kind != RowMediaOnly {
		h := p.rend.RowHeight(row.Cells)
		// Only the discrete row itself is fit-checked here; a trailing
		// media block is splittable and handled below.
		if h > p.remaining() && !p.atTop() {
			p.newPage()
		}
		p.rend.DrawRow(p.y, row.Cells, RowStyle{Background: bg, Merge: row.Merge})
		p.y += h
	}

	if row.Media != nil && (len(row.Media.Tiles) > 0 || row.Media.Leading != "") {
		p.placeMedia(row.Media)
	}
}

// background resolves the row's band fill: task rows toggle the band on
// a grouping-key change, all other rows inherit the last known band.
func (p *Paginator) background(row RowDescriptor) *surface.Color {
	if row.Kind == RowMediaOnly {
		return nil
	}
	if row.IsTask() && (!p.haveKey || row.GroupKey != p.lastKey) {
		p.band = !p.band
		p.haveKey = true
		p.lastKey = row.GroupKey
	}
	if p.band {
		c := colorBandFill
		return &c
	}
	return nil
}

// placeMedia streams a splittable media block across pages: whole tile
// rows only, never a fractional tile. When not even one row fits and the
// pending text does not fit either, an unconditional page break is
// forced before retrying; on a fresh page the content is placed
// regardless so rendering always terminates.
func (p *Paginator) placeMedia(block *MediaBlock) {
	tiles := block.Tiles
	leading := block.Leading

	for {
		if leading != "" {
			h := p.rend.BlockTextHeight(leading)
			if h > p.remaining() && !p.atTop() {
				p.newPage()
				continue
			}
			p.y += p.rend.DrawBlockText(p.y, leading)
			leading = ""
			if len(tiles) > 0 {
				p.y += p.prof.TileGutter
			}
		}
		if len(tiles) == 0 {
			return
		}

		n := p.rowsThatFit(tiles, block.TileHeight)
		if n == 0 {
			if !p.atTop() {
				p.newPage()
				continue
			}
			p.log.Warn("media row taller than a fresh page, placing anyway",
				observability.Float64("tileHeight", block.TileHeight))
			n = 1
		}

		count := min(n*p.prof.TileColumns, len(tiles))
		p.y += p.rend.DrawMediaChunk(p.y, tiles[:count], block.TileHeight)
		tiles = tiles[count:]
		if len(tiles) == 0 {
			return
		}
		p.newPage()
	}
}

// rowsThatFit counts how many whole tile rows of the remaining tiles fit
// in the space above the footer band.
func (p *Paginator) rowsThatFit(tiles []MediaTile, tileHeight float64) int {
	plan := p.rend.PlanBlock(tiles, tileHeight)
	avail := p.remaining()
	used := 0.0
	n := 0
	for i, h := range plan.RowHeights {
		if i > 0 {
			used += p.prof.TileGutter
		}
		used += h
		if used > avail {
			break
		}
		n++
	}
	return n
}
