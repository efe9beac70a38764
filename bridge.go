package main

import "sync"

// DropBridge translates decoded drag lifecycle messages into the hover
// observable and the drop batch stream. One bridge exists per process; it is
// constructed at startup and handed to whoever needs it — never reached
// through a package global.
//
// Handle is designed for a single dispatch goroutine: the native boundary
// queues events and one loop drains them, so messages are processed strictly
// in emission order and Handle is never re-entered.
type DropBridge struct {
	hover *HoverState
	drops *DropStream

	// OnPosition, when set, receives window-local pointer coordinates from
	// updated messages. Position never touches HoverState: the native source
	// fires updated on every pointer move and the hover value is binary.
	OnPosition func(x, y float64)

	mu     sync.Mutex
	closed bool
}

func NewDropBridge() *DropBridge {
	return &DropBridge{
		hover: NewHoverState(),
		drops: NewDropStream(),
	}
}

// Hover returns the bridge's hover observable.
func (b *DropBridge) Hover() *HoverState {
	return b.hover
}

// Drops returns the bridge's drop batch stream.
func (b *DropBridge) Drops() *DropStream {
	return b.drops
}

// Handle processes one inbound message. It never panics out to its caller:
// the event source is an uncontrollable boundary, so every internal failure
// degrades to a dropped event, isolated per subscriber or per batch item.
func (b *DropBridge) Handle(msg DragMessage) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	switch msg.Kind {
	case KindEntered:
		b.hover.set(true)
	case KindExited:
		b.hover.set(false)
	case KindUpdated:
		b.forwardPosition(msg.X, msg.Y)
	case KindDropped:
		batch := ResolveLocations(msg.Locations)
		Log.Debug("drop committed", "locations", len(msg.Locations), "resolved", len(batch))
		b.drops.Publish(batch)
		// a drop always ends the hover, whether or not an exited arrived
		b.hover.set(false)
	case KindNone:
		// unknown boundary message, nothing to do
	}
}

func (b *DropBridge) forwardPosition(x, y float64) {
	fn := b.OnPosition
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Log.Warn("position consumer panicked", "recovered", r)
		}
	}()
	fn(x, y)
}

// Close tears the bridge down: the drop stream closes (notifying its
// subscribers) and all hover observers are released. Safe to call more than
// once; a closed bridge is inert, not broken.
func (b *DropBridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.drops.Close()
	b.hover.release()
}
