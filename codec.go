package main

// Boundary message names. These must match the strings the native sources
// emit (frontend JS and the Windows drop target); an unknown name decodes to
// the no-op sentinel rather than failing the channel.
const (
	DragEventEntered = "entered"
	DragEventExited  = "exited"
	DragEventUpdated = "updated"
	DragEventDropped = "dropped"
)

// DecodeDragEvent turns an inbound boundary message (method name plus
// argument payload) into a DragMessage. It never fails: unknown names decode
// to KindNone, malformed payloads decode to zero-value or partial variants.
//
// Payloads cross the Wails event boundary JSON-decoded, so collections arrive
// as []interface{} and numbers as float64. The Windows native source hands
// its payloads over pre-typed ([]string, []float64); both shapes are accepted.
func DecodeDragEvent(name string, payload interface{}) DragMessage {
	switch name {
	case DragEventEntered:
		return DragMessage{Kind: KindEntered}
	case DragEventExited:
		return DragMessage{Kind: KindExited}
	case DragEventUpdated:
		x, y := decodePosition(payload)
		return DragMessage{Kind: KindUpdated, X: x, Y: y}
	case DragEventDropped:
		return DragMessage{Kind: KindDropped, Locations: decodeLocations(payload)}
	default:
		return DragMessage{Kind: KindNone}
	}
}

// decodePosition expects a two-element numeric array. Anything else yields
// the zero position; updated events are advisory only.
func decodePosition(payload interface{}) (x, y float64) {
	switch p := payload.(type) {
	case []interface{}:
		if len(p) < 2 {
			return 0, 0
		}
		x, okX := toFloat(p[0])
		y, okY := toFloat(p[1])
		if !okX || !okY {
			return 0, 0
		}
		return x, y
	case []float64:
		if len(p) < 2 {
			return 0, 0
		}
		return p[0], p[1]
	}
	return 0, 0
}

// decodeLocations expects an ordered collection of strings. A malformed
// payload yields an empty list; non-string elements are skipped so one bad
// entry cannot sink the rest of the drop.
func decodeLocations(payload interface{}) []string {
	switch p := payload.(type) {
	case []string:
		out := make([]string, len(p))
		copy(out, p)
		return out
	case []interface{}:
		out := make([]string, 0, len(p))
		for _, v := range p {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
