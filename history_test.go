package main

import (
	"os"
	"path/filepath"
	"testing"
)

func tempHistory(t *testing.T) *DropHistory {
	t.Helper()
	h, err := OpenDropHistory(filepath.Join(t.TempDir(), "history.db"), 30)
	if err != nil {
		t.Fatalf("OpenDropHistory: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHistoryRoundTrip(t *testing.T) {
	h := tempHistory(t)

	pathA := writeTempFile(t, "a.txt", "alpha")
	pathB := writeTempFile(t, "b.txt", "bravo-longer")

	batch := DropBatch{
		{URI: "file://" + pathA, Path: pathA, Name: "a.txt"},
		{URI: "file://" + pathB, Path: pathB, Name: "b.txt"},
	}
	id, err := h.RecordBatch(batch)
	if err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}
	if id == "" {
		t.Fatal("RecordBatch returned empty id")
	}

	recs, err := h.RecentBatches(10)
	if err != nil {
		t.Fatalf("RecentBatches: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d batches, want 1", len(recs))
	}
	rec := recs[0]
	if rec.BatchID != id {
		t.Errorf("BatchID = %q, want %q", rec.BatchID, id)
	}
	if len(rec.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(rec.Files))
	}
	if rec.Files[0].Name != "a.txt" || rec.Files[1].Name != "b.txt" {
		t.Errorf("drop order not preserved: %+v", rec.Files)
	}
	if rec.Files[0].Size != int64(len("alpha")) {
		t.Errorf("size = %d, want %d", rec.Files[0].Size, len("alpha"))
	}
	if rec.Files[0].Checksum == "" || rec.Files[0].Checksum == rec.Files[1].Checksum {
		t.Errorf("checksums wrong: %q vs %q", rec.Files[0].Checksum, rec.Files[1].Checksum)
	}
}

func TestHistoryMissingFileDegrades(t *testing.T) {
	h := tempHistory(t)

	batch := DropBatch{{URI: "file:///nope/missing.bin", Path: "/nope/missing.bin", Name: "missing.bin"}}
	if _, err := h.RecordBatch(batch); err != nil {
		t.Fatalf("RecordBatch should tolerate missing files: %v", err)
	}

	recs, err := h.RecentBatches(1)
	if err != nil {
		t.Fatal(err)
	}
	f := recs[0].Files[0]
	if f.Size != 0 || f.Checksum != "" {
		t.Errorf("missing file row = %+v, want zero size and empty checksum", f)
	}
}

func TestHistoryEmptyBatchNotRecorded(t *testing.T) {
	h := tempHistory(t)
	id, err := h.RecordBatch(DropBatch{})
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("empty batch got id %q", id)
	}
	recs, _ := h.RecentBatches(10)
	if len(recs) != 0 {
		t.Errorf("empty batch was recorded: %+v", recs)
	}
}

func TestHistoryNewestFirstAndLimit(t *testing.T) {
	h := tempHistory(t)

	var ids []string
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		id, err := h.RecordBatch(DropBatch{{URI: "file:///" + name, Path: "/" + name, Name: name}})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	recs, err := h.RecentBatches(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d batches, want 2", len(recs))
	}
	if recs[0].BatchID != ids[2] || recs[1].BatchID != ids[1] {
		t.Errorf("order wrong: got %q,%q want %q,%q", recs[0].BatchID, recs[1].BatchID, ids[2], ids[1])
	}
}

func TestHistoryClear(t *testing.T) {
	h := tempHistory(t)
	if _, err := h.RecordBatch(DropBatch{{URI: "file:///x", Path: "/x", Name: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := h.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	recs, _ := h.RecentBatches(10)
	if len(recs) != 0 {
		t.Errorf("history not cleared: %+v", recs)
	}
}

func TestHistoryNilSafe(t *testing.T) {
	var h *DropHistory
	if _, err := h.RecordBatch(DropBatch{{Name: "x"}}); err == nil {
		t.Error("nil history RecordBatch should error")
	}
	if _, err := h.RecentBatches(1); err == nil {
		t.Error("nil history RecentBatches should error")
	}
	h.Close() // must not panic
}
