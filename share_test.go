package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
)

func TestShareLatestManifest(t *testing.T) {
	path := writeTempFile(t, "shared.txt", "payload")
	s := NewShareServer(0)
	s.SetBatch(DropBatch{{URI: "file://" + path, Path: path, Name: "shared.txt"}})

	ts := httptest.NewServer(s.handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/latest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var manifest []shareManifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		t.Fatal(err)
	}
	if len(manifest) != 1 {
		t.Fatalf("manifest has %d entries, want 1", len(manifest))
	}
	if manifest[0].Name != "shared.txt" || manifest[0].Size != int64(len("payload")) {
		t.Errorf("manifest entry = %+v", manifest[0])
	}
}

func TestShareLatestEmpty(t *testing.T) {
	s := NewShareServer(0)
	ts := httptest.NewServer(s.handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/latest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var manifest []shareManifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		t.Fatal(err)
	}
	if len(manifest) != 0 {
		t.Errorf("empty share returned %+v", manifest)
	}
}

func TestShareFileDownload(t *testing.T) {
	path := writeTempFile(t, "download me.bin", "file body here")
	s := NewShareServer(0)
	s.SetBatch(DropBatch{{URI: "file://" + path, Path: path, Name: "download me.bin"}})

	ts := httptest.NewServer(s.handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/file/0")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="download me.bin"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "file body here" {
		t.Errorf("body = %q", body)
	}
}

func TestShareFileBadIndex(t *testing.T) {
	s := NewShareServer(0)
	s.SetBatch(DropBatch{{Path: "/x", Name: "x"}})

	ts := httptest.NewServer(s.handler())
	defer ts.Close()

	tests := []struct {
		path string
		code int
	}{
		{"/file/abc", 400},
		{"/file/", 400},
		{"/file/-1", 404},
		{"/file/5", 404},
	}
	for _, tt := range tests {
		resp, err := ts.Client().Get(ts.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.code {
			t.Errorf("GET %s: status = %d, want %d", tt.path, resp.StatusCode, tt.code)
		}
	}
}

func TestShareStopWithoutStart(t *testing.T) {
	s := NewShareServer(8090)
	s.Stop() // must be a no-op
	if s.Running() {
		t.Error("Running() true before Start")
	}
}
