// Package checklist holds the read-only inspection record consumed by
// the report layout engine: one contract's checklist items with their
// locations, tasks, entries and media references. Records are snapshots;
// the engine never mutates them.
package checklist

import (
	"strings"
	"time"
)

// MediaType tags a media reference as a photo or a video.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// MediaRef points at a photo or video asset. Photos resolve to raster
// buffers; videos always render as a placeholder tile.
type MediaRef struct {
	URI     string    `json:"uri"`
	Type    MediaType `json:"type"`
	Caption string    `json:"caption,omitempty"`
	Order   int       `json:"order,omitempty"`
}

// Entry is one inspector or user contribution. Only entries with
// IncludeInReport set are eligible for rendering.
type Entry struct {
	ID              string     `json:"id"`
	Author          string     `json:"author"`
	Remark          string     `json:"remark,omitempty"`
	Condition       string     `json:"condition,omitempty"`
	Cause           string     `json:"cause,omitempty"`
	Resolution      string     `json:"resolution,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	Media           []MediaRef `json:"media,omitempty"`
	IncludeInReport bool       `json:"includeInReport"`

	// TaskID and LocationID attach the entry to a task or a location
	// group; both empty means the item-level "general" bucket.
	TaskID     string `json:"taskId,omitempty"`
	LocationID string `json:"locationId,omitempty"`
}

// Task is a checklist subtask under a location.
type Task struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Condition  string  `json:"condition,omitempty"`
	Cause      string  `json:"cause,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	LocationID string  `json:"locationId,omitempty"`
	Entries    []Entry `json:"entries,omitempty"`
}

// Location is a sub-grouping within an item, e.g. a sub-area of a room.
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Remark    string `json:"remark,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// Item is one inspected unit, e.g. a room.
type Item struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status,omitempty"`
	Locations []Location `json:"locations,omitempty"`
	Tasks     []Task     `json:"tasks,omitempty"`
	// Entries holds contributions not tied to any task.
	Entries []Entry `json:"entries,omitempty"`
}

// Record is the resolved content tree for one report request.
type Record struct {
	ContractRef     string    `json:"contractRef,omitempty"`
	PropertyAddress string    `json:"propertyAddress,omitempty"`
	InspectorName   string    `json:"inspectorName,omitempty"`
	InspectedAt     time.Time `json:"inspectedAt,omitempty"`
	Items           []Item    `json:"items"`
}

// OthersTaskName is the catch-all task name injected per item.
const OthersTaskName = "Others"

// EnsureOthers returns the task list with a synthetic "Others" catch-all
// appended when no real task carries that name. The transform is pure;
// the synthetic task is never stored on the record.
func EnsureOthers(tasks []Task) []Task {
	for _, t := range tasks {
		if strings.EqualFold(t.Name, OthersTaskName) {
			return tasks
		}
	}
	out := make([]Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	return append(out, Task{Name: OthersTaskName})
}

// NormalizeCondition canonicalizes a condition code for case-insensitive
// comparison.
func NormalizeCondition(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
