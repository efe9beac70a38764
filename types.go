package main

import "time"

// DragKind tags a DragMessage variant.
type DragKind int

const (
	// KindNone is the no-op sentinel for messages the codec could not place.
	// The dispatcher drops it without logging an error.
	KindNone DragKind = iota
	KindEntered
	KindExited
	KindUpdated
	KindDropped
)

// DragMessage is one decoded drag lifecycle event from the native boundary.
// Immutable once constructed.
type DragMessage struct {
	Kind DragKind

	// X, Y carry the pointer position for KindUpdated, window-local with
	// origin at the top-left corner.
	X, Y float64

	// Locations carries the raw location identifiers for KindDropped,
	// in the order the native source reported them.
	Locations []string
}

// FileReference is a resolved handle to a local file. Resolution does not
// check that the file exists.
type FileReference struct {
	URI  string `json:"uri"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// DropBatch is the ordered set of successfully resolved file references from
// one dropped event. An empty batch is valid.
type DropBatch []FileReference

// DropRecord is one file row from the drop history store.
type DropRecord struct {
	URI      string `json:"uri"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// BatchRecord is one recorded drop batch with its files in drop order.
type BatchRecord struct {
	BatchID   string       `json:"batchId"`
	DroppedAt time.Time    `json:"droppedAt"`
	Files     []DropRecord `json:"files"`
}

// Stable: "1.0.0", "1.1.0"  |  Test: "1.0.1-beta", "1.1.0-rc1", "2.0.0-dev"
const AppVersion = "0.4.2"

// AppChannel returns "stable" or "test" based on the version string.
func AppChannel() string {
	for _, c := range AppVersion {
		if c == '-' {
			return "test"
		}
	}
	return "stable"
}
