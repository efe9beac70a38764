package main

import "sync"

// DropStream is the multi-subscriber broadcast channel for resolved drop
// batches. There is no buffering and no replay: a subscriber only receives
// batches published after it subscribed, and a batch published with zero
// subscribers is discarded.
type DropStream struct {
	mu     sync.Mutex
	closed bool
	subs   []*DropSubscription
}

// DropSubscription is the handle returned by Subscribe.
type DropSubscription struct {
	stream  *DropStream
	onBatch func(DropBatch)
	onClose func()
	closed  bool
}

func NewDropStream() *DropStream {
	return &DropStream{}
}

// Subscribe registers a consumer. onClose may be nil; when set it fires once,
// when the stream closes. Subscribing to a closed stream returns an
// already-closed subscription whose onClose has fired — the consumer learns
// of the closure but never sees data.
func (d *DropStream) Subscribe(onBatch func(DropBatch), onClose func()) *DropSubscription {
	sub := &DropSubscription{stream: d, onBatch: onBatch, onClose: onClose}

	d.mu.Lock()
	if d.closed {
		sub.closed = true
		d.mu.Unlock()
		notifyClosed(sub)
		return sub
	}
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	return sub
}

// Publish delivers a batch to every current subscriber. Dispatcher-only.
// After Close it is a no-op. A panicking consumer does not affect delivery to
// the other subscribers of the same batch.
func (d *DropStream) Publish(batch DropBatch) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if len(d.subs) == 0 {
		// nobody listening: the batch is discarded, never queued
		d.mu.Unlock()
		return
	}
	snapshot := make([]*DropSubscription, len(d.subs))
	copy(snapshot, d.subs)
	d.mu.Unlock()

	for _, sub := range snapshot {
		deliverBatch(sub, batch)
	}
}

// Close shuts the stream down and notifies every subscriber of the closure.
// Idempotent; after Close both Publish and Cancel are no-ops.
func (d *DropStream) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	snapshot := d.subs
	d.subs = nil
	d.mu.Unlock()

	for _, sub := range snapshot {
		sub.closed = true
		notifyClosed(sub)
	}
}

// Cancel removes the subscription from the stream. It takes effect for all
// future batches; a delivery already in progress is allowed to finish.
// Cancelling does not fire onClose — that signal is reserved for stream
// closure.
func (s *DropSubscription) Cancel() {
	if s == nil || s.stream == nil {
		return
	}
	d := s.stream
	d.mu.Lock()
	for i, cur := range d.subs {
		if cur == s {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			break
		}
	}
	s.closed = true
	d.mu.Unlock()
}

// Closed reports whether this subscription can still receive batches.
func (s *DropSubscription) Closed() bool {
	return s.closed
}

func deliverBatch(sub *DropSubscription, batch DropBatch) {
	defer func() {
		if r := recover(); r != nil {
			Log.Warn("drop consumer panicked", "recovered", r)
		}
	}()
	if sub.onBatch != nil {
		sub.onBatch(batch)
	}
}

func notifyClosed(sub *DropSubscription) {
	defer func() {
		if r := recover(); r != nil {
			Log.Warn("drop consumer panicked on close", "recovered", r)
		}
	}()
	if sub.onClose != nil {
		sub.onClose()
	}
}
