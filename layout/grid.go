package layout

import (
	"github.com/nexstacksg/property-stewards-app-sub001/config"
)

// Measurer is the subset of the drawing surface the grid planner needs.
type Measurer interface {
	HeightOfString(s string, width, fontSize float64) float64
}

// GridPlan describes the tile grid for a media block at one width.
type GridPlan struct {
	Columns     int
	TileWidth   float64
	RowHeights  []float64
	TotalHeight float64
}

// Rows returns the number of tile rows in the plan.
func (g GridPlan) Rows() int { return len(g.RowHeights) }

// PlanGrid arranges count tiles into a fixed-column grid at the given
// available width. Each row is as tall as its tallest tile, where a
// tile's height is the tile raster height plus, if captioned, the
// caption gap and the caption's wrapped height at tile width. Zero tiles
// yield a zero-height plan, which callers treat as "no media block".
func PlanGrid(m Measurer, p config.Profile, count int, captions []string, availableWidth, tileHeight float64) GridPlan {
	cols := p.TileColumns
	plan := GridPlan{Columns: cols}
	if count <= 0 {
		return plan
	}
	plan.TileWidth = (availableWidth - p.TileGutter*float64(cols-1)) / float64(cols)

	for start := 0; start < count; start += cols {
		end := start + cols
		if end > count {
			end = count
		}
		rowH := tileHeight
		for i := start; i < end; i++ {
			if i >= len(captions) || captions[i] == "" {
				continue
			}
			h := tileHeight + p.CaptionGap + m.HeightOfString(captions[i], plan.TileWidth, p.CaptionFontSize)
			if h > rowH {
				rowH = h
			}
		}
		plan.RowHeights = append(plan.RowHeights, rowH)
	}

	for _, h := range plan.RowHeights {
		plan.TotalHeight += h
	}
	plan.TotalHeight += p.TileGutter * float64(len(plan.RowHeights)-1)
	return plan
}
