package main

import "testing"

func testBatch(names ...string) DropBatch {
	batch := make(DropBatch, 0, len(names))
	for _, n := range names {
		batch = append(batch, FileReference{URI: "file:///" + n, Path: "/" + n, Name: n})
	}
	return batch
}

func TestStreamNoReplay(t *testing.T) {
	s := NewDropStream()
	s.Publish(testBatch("early.txt")) // zero subscribers: discarded

	var got []DropBatch
	s.Subscribe(func(b DropBatch) { got = append(got, b) }, nil)

	s.Publish(testBatch("a.txt"))
	if len(got) != 1 {
		t.Fatalf("got %d batches, want 1 (no replay of pre-subscription batch)", len(got))
	}
	if got[0][0].Name != "a.txt" {
		t.Errorf("received wrong batch: %+v", got[0])
	}
}

func TestStreamBroadcast(t *testing.T) {
	s := NewDropStream()
	counts := make([]int, 3)
	for i := range counts {
		i := i
		s.Subscribe(func(DropBatch) { counts[i]++ }, nil)
	}

	s.Publish(testBatch("x.txt"))
	s.Publish(testBatch("y.txt"))
	for i, c := range counts {
		if c != 2 {
			t.Errorf("subscriber %d received %d batches, want 2", i, c)
		}
	}
}

func TestStreamCancel(t *testing.T) {
	s := NewDropStream()
	count := 0
	sub := s.Subscribe(func(DropBatch) { count++ }, nil)

	s.Publish(testBatch("a.txt"))
	sub.Cancel()
	s.Publish(testBatch("b.txt"))

	if count != 1 {
		t.Errorf("cancelled subscriber received %d batches, want 1", count)
	}
	if !sub.Closed() {
		t.Error("cancelled subscription not marked closed")
	}
}

func TestStreamCancelDoesNotFireOnClose(t *testing.T) {
	s := NewDropStream()
	closeFired := false
	sub := s.Subscribe(nil, func() { closeFired = true })
	sub.Cancel()
	if closeFired {
		t.Error("Cancel fired onClose; that signal is reserved for stream closure")
	}
}

func TestStreamCloseIdempotent(t *testing.T) {
	s := NewDropStream()
	closeCount := 0
	s.Subscribe(nil, func() { closeCount++ })

	s.Close()
	s.Close()
	s.Close()

	if closeCount != 1 {
		t.Errorf("onClose fired %d times, want 1", closeCount)
	}
}

func TestStreamPublishAfterClose(t *testing.T) {
	s := NewDropStream()
	received := false
	s.Subscribe(func(DropBatch) { received = true }, nil)

	s.Close()
	s.Publish(testBatch("late.txt"))
	if received {
		t.Error("batch delivered after Close")
	}
}

func TestStreamSubscribeAfterClose(t *testing.T) {
	s := NewDropStream()
	s.Close()

	closeFired := false
	sub := s.Subscribe(func(DropBatch) { t.Error("closed stream delivered data") }, func() { closeFired = true })

	if !sub.Closed() {
		t.Error("subscription to closed stream not marked closed")
	}
	if !closeFired {
		t.Error("subscription to closed stream did not fire onClose")
	}
	s.Publish(testBatch("a.txt"))
}

func TestStreamPanicIsolation(t *testing.T) {
	s := NewDropStream()
	s.Subscribe(func(DropBatch) { panic("consumer bug") }, nil)
	secondRan := false
	s.Subscribe(func(DropBatch) { secondRan = true }, nil)

	s.Publish(testBatch("a.txt"))
	if !secondRan {
		t.Error("panicking consumer blocked delivery to its sibling")
	}
}

func TestStreamEmptyBatchDelivered(t *testing.T) {
	s := NewDropStream()
	var got DropBatch
	delivered := false
	s.Subscribe(func(b DropBatch) { got = b; delivered = true }, nil)

	s.Publish(DropBatch{})
	if !delivered {
		t.Fatal("empty batch not delivered; all-invalid drops still signal")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil batch", got)
	}
}
