package main

// Event name constants for Wails runtime events.
//
// EventDragBoundary is the inbound boundary channel: both sides must use this
// exact name, a mismatch is silent non-delivery (Wails events semantics), not
// an error. The remaining names are outbound pushes to the frontend.
const (
	EventDragBoundary = "drag:event"

	EventHoverChanged = "drop-hover-changed"
	EventDragPosition = "drag-position"
	EventBatchDropped = "batch-dropped"
	EventShareChanged = "share-changed"
)
