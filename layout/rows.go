// Package layout converts a checklist record into paginated draw calls:
// the content aggregator flattens the hierarchy into row descriptors,
// the grid planner sizes media tiles, the renderer draws single rows and
// the paginator drives the stream across pages.
package layout

import (
	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
)

// RowKind discriminates the row descriptor variants.
type RowKind int

const (
	// RowTask is a structured four-column task row.
	RowTask RowKind = iota
	// RowRemarks is a merged annotation row of up to four entry segments.
	RowRemarks
	// RowMediaOnly carries a media block and no table cells.
	RowMediaOnly
	// RowFallback is the "No subtasks" row for items with no groups.
	RowFallback
)

// Segment is one unit of cell content: text plus an optional media grid.
type Segment struct {
	Text     string
	Photos   []checklist.MediaRef
	Videos   []checklist.MediaRef
	Captions []string
}

// MediaCount returns the number of tiles a segment's media grid needs.
func (s Segment) MediaCount() int { return len(s.Photos) + len(s.Videos) }

// Cell holds zero or more segments and occupies one of the four fixed
// columns: Location, Item, Subtask, Condition.
type Cell struct {
	Segments []Segment
}

// Text builds a single-segment cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Segments: []Segment{{Text: s}}}
}

// MediaTile is one tile of a splittable media block.
type MediaTile struct {
	Ref     checklist.MediaRef
	Caption string
}

// MediaBlock is an unbounded run of media tiles with an optional leading
// line of text. Blocks are the only content the paginator may split
// across pages, always at whole tile-row boundaries.
type MediaBlock struct {
	Leading    string
	Tiles      []MediaTile
	TileHeight float64
}

// RowDescriptor describes one renderable unit: a table row of up to four
// cells, optionally trailed by a media block, or a bare media block.
type RowDescriptor struct {
	Kind  RowKind
	Cells []Cell

	// Merge draws one outer border for the whole row instead of
	// per-cell borders; used for annotation rows.
	Merge bool

	// GroupKey drives the alternating background band; adjacent task
	// rows sharing a key share a band.
	GroupKey string

	// Media is the trailing splittable block, nil for plain rows.
	Media *MediaBlock
}

// IsTask reports whether the row participates in band alternation.
func (r RowDescriptor) IsTask() bool { return r.Kind == RowTask }
