package main

import "sync"

// HoverState is the boolean observable for "a drag is over the window".
// Only the bridge dispatcher writes it; any number of observers may read and
// subscribe. Observers are invoked synchronously, in subscription order,
// exactly once per value change — never per raw message.
type HoverState struct {
	mu    sync.Mutex
	value bool
	subs  []*HoverSubscription
}

// HoverSubscription is the handle returned by Subscribe.
type HoverSubscription struct {
	state *HoverState
	fn    func(bool)
}

func NewHoverState() *HoverState {
	return &HoverState{}
}

// Get returns the current hover value.
func (h *HoverState) Get() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Subscribe registers an observer for value changes. The observer does not
// see the current value, only subsequent changes. The subscriber list is
// snapshotted before each notification pass, so an observer subscribed from
// inside a callback first fires on the next change.
func (h *HoverState) Subscribe(fn func(bool)) *HoverSubscription {
	sub := &HoverSubscription{state: h, fn: fn}
	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return sub
}

// Cancel removes the observer. A notification already in progress for this
// observer is allowed to finish; all future changes are skipped.
func (s *HoverSubscription) Cancel() {
	if s == nil || s.state == nil {
		return
	}
	h := s.state
	h.mu.Lock()
	for i, cur := range h.subs {
		if cur == s {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
}

// set updates the value and notifies observers. Dispatcher-only. Setting the
// current value again is a no-op: repeated native entered events while already
// hovering must not churn observers.
func (h *HoverState) set(v bool) {
	h.mu.Lock()
	if h.value == v {
		h.mu.Unlock()
		return
	}
	h.value = v
	snapshot := make([]*HoverSubscription, len(h.subs))
	copy(snapshot, h.subs)
	h.mu.Unlock()

	for _, sub := range snapshot {
		notifyHover(sub, v)
	}
}

// notifyHover isolates observer panics: one failing observer must not
// interrupt delivery to its siblings or corrupt dispatcher state.
func notifyHover(sub *HoverSubscription, v bool) {
	defer func() {
		if r := recover(); r != nil {
			Log.Warn("hover observer panicked", "recovered", r)
		}
	}()
	sub.fn(v)
}

// release drops all observers. Called on bridge teardown.
func (h *HoverState) release() {
	h.mu.Lock()
	h.subs = nil
	h.mu.Unlock()
}
