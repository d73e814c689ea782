package layout

import (
	"fmt"
	"sort"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/config"
)

// Options are the render options for one report section.
type Options struct {
	Heading        string
	StartOnNewPage bool
	IncludeMeta    bool

	// FilterByScopeID restricts rendering to the item with this ID.
	FilterByScopeID string

	// AllowedConditions, when non-empty, restricts which task rows are
	// emitted. Matching is case-insensitive. A task without a condition
	// code is excluded whenever the filter is active.
	AllowedConditions []string

	// EntryOnly suppresses inline task media; media then appears only
	// through the bucketed media-only rows.
	EntryOnly bool

	// IncludeMedia gates all media rendering.
	IncludeMedia bool
}

func (o Options) allowSet() map[string]struct{} {
	if len(o.AllowedConditions) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(o.AllowedConditions))
	for _, c := range o.AllowedConditions {
		if n := checklist.NormalizeCondition(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

const (
	generalGroupKey   = "general"
	generalGroupLabel = "General"
	fallbackRowText   = "No subtasks"
	bucketDateLayout  = "2006-01-02"
	remarkDateLayout  = "2 Jan 2006"
	entriesPerRemark  = 4
)

type group struct {
	key   string
	label string
	loc   *checklist.Location
	tasks []checklist.Task
}

type aggregator struct {
	opts  Options
	prof  config.Profile
	allow map[string]struct{}
	rows  []RowDescriptor

	// Per-item state, reset at the top of itemRows.
	seenPhotos map[string]bool
	seenVideos map[string]bool
	taskLabels map[string]string
}

// BuildRows walks the hierarchical record and emits the ordered row
// descriptor stream the paginator consumes. The walk never mutates the
// record; all derived grouping state lives on the aggregator.
func BuildRows(items []checklist.Item, prof config.Profile, opts Options) []RowDescriptor {
	a := &aggregator{opts: opts, prof: prof, allow: opts.allowSet()}
	for i := range items {
		a.itemRows(&items[i])
	}
	return a.rows
}

func (a *aggregator) itemRows(item *checklist.Item) {
	a.seenPhotos = make(map[string]bool)
	a.seenVideos = make(map[string]bool)
	a.taskLabels = make(map[string]string)

	standalone := eligibleEntries(item.Entries)

	// The synthetic "Others" catch-all only materializes when there are
	// standalone contributions for it to anchor.
	tasks := item.Tasks
	if len(standalone) > 0 {
		tasks = checklist.EnsureOthers(tasks)
	}
	groups := buildGroups(item, tasks)
	if len(groups) == 0 {
		a.rows = append(a.rows, RowDescriptor{
			Kind:     RowFallback,
			GroupKey: generalGroupKey,
			Cells:    []Cell{{}, Text(item.Name), Text(fallbackRowText), {}},
		})
		return
	}

	num := 0
	for _, g := range groups {
		for _, task := range g.tasks {
			num++
			label := fmt.Sprintf("%d. %s", num, task.Name)
			if task.ID != "" {
				a.taskLabels[task.ID] = label
			}
			if !a.conditionAllowed(task.Condition) {
				continue
			}
			row := RowDescriptor{
				Kind:     RowTask,
				GroupKey: g.key,
				Cells: []Cell{
					Text(g.label),
					Text(item.Name),
					Text(label),
					Text(conditionText(task)),
				},
			}
			if !a.opts.EntryOnly && a.opts.IncludeMedia {
				row.Media = a.taskMediaBlock(task, label)
			}
			a.rows = append(a.rows, row)
		}

		groupEntries := entriesForLocation(standalone, g.key)
		a.mediaRows(g.key, g.label, append(groupEntries, groupTaskEntries(g.tasks)...))
		if g.loc != nil && g.loc.Remark != "" {
			a.rows = append(a.rows, RowDescriptor{
				Kind:     RowRemarks,
				Merge:    true,
				GroupKey: g.key,
				Cells:    padCells([]Cell{Text(g.loc.Remark)}),
			})
		}
		a.remarkRows(g.key, groupEntries)
	}

	general := generalEntries(standalone)
	a.mediaRows(generalGroupKey, item.Name, general)
	a.remarkRows(generalGroupKey, general)
}

// buildGroups orders groups by walking tasks first (each assigned to its
// location, or the general group when ungrouped), then merging in any
// locations that had no tasks, preserving first-seen order.
func buildGroups(item *checklist.Item, tasks []checklist.Task) []*group {
	locByID := make(map[string]*checklist.Location, len(item.Locations))
	for i := range item.Locations {
		locByID[item.Locations[i].ID] = &item.Locations[i]
	}

	var ordered []*group
	index := make(map[string]*group)
	add := func(key, label string, loc *checklist.Location) *group {
		if g, ok := index[key]; ok {
			return g
		}
		g := &group{key: key, label: label, loc: loc}
		index[key] = g
		ordered = append(ordered, g)
		return g
	}

	for _, t := range tasks {
		key, label := generalGroupKey, generalGroupLabel
		var loc *checklist.Location
		if t.LocationID != "" {
			if l, ok := locByID[t.LocationID]; ok {
				key, label, loc = l.ID, l.Name, l
			}
		}
		g := add(key, label, loc)
		g.tasks = append(g.tasks, t)
	}
	for i := range item.Locations {
		loc := &item.Locations[i]
		add(loc.ID, loc.Name, loc)
	}
	return ordered
}

// conditionAllowed implements the strict filtering policy: with a filter
// active, a task passes only when it carries a condition code present in
// the allow-set.
func (a *aggregator) conditionAllowed(condition string) bool {
	if a.allow == nil {
		return true
	}
	n := checklist.NormalizeCondition(condition)
	if n == "" {
		return false
	}
	_, ok := a.allow[n]
	return ok
}

// conditionText annotates the task's condition code with the most
// recently recorded cause/resolution detail, scanning entries newest
// first and falling back to the task-level aggregated detail.
func conditionText(t checklist.Task) string {
	entries := make([]checklist.Entry, len(t.Entries))
	copy(entries, t.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	detail := ""
	for _, e := range entries {
		if e.Cause != "" || e.Resolution != "" {
			detail = joinDetail(e.Cause, e.Resolution)
			break
		}
	}
	if detail == "" {
		detail = joinDetail(t.Cause, t.Resolution)
	}

	switch {
	case detail == "":
		return t.Condition
	case t.Condition == "":
		return detail
	default:
		return t.Condition + "\n" + detail
	}
}

func joinDetail(cause, resolution string) string {
	switch {
	case cause != "" && resolution != "":
		return "Cause: " + cause + "; Resolution: " + resolution
	case cause != "":
		return "Cause: " + cause
	case resolution != "":
		return "Resolution: " + resolution
	}
	return ""
}

// taskMediaBlock collects the task's own media into an inline trailing
// block, marking every tile as seen for the item.
func (a *aggregator) taskMediaBlock(task checklist.Task, label string) *MediaBlock {
	var tiles []MediaTile
	for _, e := range eligibleEntries(task.Entries) {
		for _, m := range orderedMedia(e.Media) {
			if !a.markSeen(m) {
				continue
			}
			caption := m.Caption
			if caption == "" {
				caption = label
			}
			tiles = append(tiles, MediaTile{Ref: m, Caption: caption})
		}
	}
	if len(tiles) == 0 {
		return nil
	}
	return &MediaBlock{Tiles: tiles, TileHeight: a.blockTileHeight(tiles)}
}

// mediaRows buckets a group's entries by (recording date, author) and
// emits at most two media-only rows per bucket: untasked media first,
// captioned with the group label, then task-attributed media captioned
// with the task's numbered label.
func (a *aggregator) mediaRows(groupKey, groupLabel string, entries []checklist.Entry) {
	if !a.opts.IncludeMedia {
		return
	}
	type bucketKey struct{ date, author string }
	var order []bucketKey
	buckets := make(map[bucketKey][]checklist.Entry)
	for _, e := range entries {
		k := bucketKey{e.CreatedAt.Format(bucketDateLayout), e.Author}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], e)
	}

	for _, k := range order {
		var untasked, tasked []MediaTile
		for _, e := range buckets[k] {
			for _, m := range orderedMedia(e.Media) {
				if !a.markSeen(m) {
					continue
				}
				caption := groupLabel
				if e.TaskID != "" {
					if lbl, ok := a.taskLabels[e.TaskID]; ok {
						caption = lbl
					}
				}
				if m.Caption != "" {
					caption = caption + " - " + m.Caption
				}
				tile := MediaTile{Ref: m, Caption: caption}
				if e.TaskID != "" {
					tasked = append(tasked, tile)
				} else {
					untasked = append(untasked, tile)
				}
			}
		}
		leading := fmt.Sprintf("Recorded by %s on %s", k.author, k.date)
		if len(untasked) > 0 {
			a.rows = append(a.rows, RowDescriptor{
				Kind:     RowMediaOnly,
				GroupKey: groupKey,
				Media:    &MediaBlock{Leading: leading, Tiles: untasked, TileHeight: a.blockTileHeight(untasked)},
			})
			leading = ""
		}
		if len(tasked) > 0 {
			a.rows = append(a.rows, RowDescriptor{
				Kind:     RowMediaOnly,
				GroupKey: groupKey,
				Media:    &MediaBlock{Leading: leading, Tiles: tasked, TileHeight: a.blockTileHeight(tasked)},
			})
		}
	}
}

// remarkRows chunks group-level entries into merged annotation rows of
// up to four parallel segments.
func (a *aggregator) remarkRows(groupKey string, entries []checklist.Entry) {
	var withRemarks []checklist.Entry
	for _, e := range entries {
		if e.Remark != "" {
			withRemarks = append(withRemarks, e)
		}
	}
	for start := 0; start < len(withRemarks); start += entriesPerRemark {
		end := min(start+entriesPerRemark, len(withRemarks))
		cells := make([]Cell, 0, entriesPerRemark)
		for _, e := range withRemarks[start:end] {
			cells = append(cells, Text(formatRemark(e)))
		}
		a.rows = append(a.rows, RowDescriptor{
			Kind:     RowRemarks,
			Merge:    true,
			GroupKey: groupKey,
			Cells:    padCells(cells),
		})
	}
}

func formatRemark(e checklist.Entry) string {
	if e.Author == "" {
		return e.Remark
	}
	return fmt.Sprintf("%s (%s): %s", e.Author, e.CreatedAt.Format(remarkDateLayout), e.Remark)
}

// markSeen records a media URI in the item-scoped dedup set and reports
// whether this is its first appearance.
func (a *aggregator) markSeen(m checklist.MediaRef) bool {
	set := a.seenPhotos
	if m.Type == checklist.MediaVideo {
		set = a.seenVideos
	}
	if set[m.URI] {
		return false
	}
	set[m.URI] = true
	return true
}

// blockTileHeight picks the photo tile height when a block contains any
// photo, otherwise the shorter video tile height.
func (a *aggregator) blockTileHeight(tiles []MediaTile) float64 {
	for _, t := range tiles {
		if t.Ref.Type != checklist.MediaVideo {
			return a.prof.PhotoTileHeight
		}
	}
	return a.prof.VideoTileHeight
}

func eligibleEntries(entries []checklist.Entry) []checklist.Entry {
	var out []checklist.Entry
	for _, e := range entries {
		if e.IncludeInReport {
			out = append(out, e)
		}
	}
	return out
}

func groupTaskEntries(tasks []checklist.Task) []checklist.Entry {
	var out []checklist.Entry
	for _, t := range tasks {
		for _, e := range eligibleEntries(t.Entries) {
			if e.TaskID == "" {
				e.TaskID = t.ID
			}
			out = append(out, e)
		}
	}
	return out
}

func entriesForLocation(entries []checklist.Entry, locationID string) []checklist.Entry {
	var out []checklist.Entry
	for _, e := range entries {
		if e.TaskID == "" && e.LocationID == locationID {
			out = append(out, e)
		}
	}
	return out
}

// generalEntries returns standalone entries attached to neither a
// location nor a task: the item-level bucket of step seven.
func generalEntries(entries []checklist.Entry) []checklist.Entry {
	return entriesForLocation(entries, "")
}

func orderedMedia(media []checklist.MediaRef) []checklist.MediaRef {
	out := make([]checklist.MediaRef, len(media))
	copy(out, media)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func padCells(cells []Cell) []Cell {
	for len(cells) < 4 {
		cells = append(cells, Cell{})
	}
	return cells
}
