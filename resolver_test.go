package main

import (
	"testing"
)

func TestResolveLocationsOrderAndDrops(t *testing.T) {
	batch := ResolveLocations([]string{
		"file:///a.txt",
		"not-a-uri",
		"file:///b.txt",
	})
	if len(batch) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(batch), batch)
	}
	if batch[0].Name != "a.txt" || batch[1].Name != "b.txt" {
		t.Errorf("order not preserved: %+v", batch)
	}
}

func TestResolveLocationsEmptyInput(t *testing.T) {
	for _, in := range [][]string{nil, {}, {"", "   ", "relative/path", "http://host/x"}} {
		batch := ResolveLocations(in)
		if batch == nil {
			t.Errorf("ResolveLocations(%v) = nil, want empty batch", in)
		}
		if len(batch) != 0 {
			t.Errorf("ResolveLocations(%v) = %+v, want empty", in, batch)
		}
	}
}

func TestResolveFileURIs(t *testing.T) {
	tests := []struct {
		uri  string
		path string
		name string
	}{
		{"file:///home/user/report.pdf", "/home/user/report.pdf", "report.pdf"},
		{"file:///tmp/with%20space.txt", "/tmp/with space.txt", "with space.txt"},
		{"file://localhost/etc/hosts", "/etc/hosts", "hosts"},
		{"file:///C:/docs/report.pdf", "C:/docs/report.pdf", "report.pdf"},
	}
	for _, tt := range tests {
		batch := ResolveLocations([]string{tt.uri})
		if len(batch) != 1 {
			t.Errorf("ResolveLocations(%q): got %d entries, want 1", tt.uri, len(batch))
			continue
		}
		ref := batch[0]
		if ref.URI != tt.uri {
			t.Errorf("%q: URI = %q, want original", tt.uri, ref.URI)
		}
		if ref.Path != tt.path {
			t.Errorf("%q: Path = %q, want %q", tt.uri, ref.Path, tt.path)
		}
		if ref.Name != tt.name {
			t.Errorf("%q: Name = %q, want %q", tt.uri, ref.Name, tt.name)
		}
	}
}

func TestResolveRejects(t *testing.T) {
	tests := []string{
		"http://example.com/a.txt",
		"file://otherhost/a.txt", // remote authority
		"file://",                // no path
		"ftp://host/a.txt",
		"a.txt",
		"./a.txt",
		"",
	}
	for _, in := range tests {
		if batch := ResolveLocations([]string{in}); len(batch) != 0 {
			t.Errorf("ResolveLocations(%q) = %+v, want rejected", in, batch)
		}
	}
}

func TestResolveAbsoluteNativePath(t *testing.T) {
	batch := ResolveLocations([]string{"/var/data/drop.bin"})
	if len(batch) != 1 {
		t.Fatalf("got %d entries, want 1", len(batch))
	}
	ref := batch[0]
	if ref.Path != "/var/data/drop.bin" {
		t.Errorf("Path = %q", ref.Path)
	}
	if ref.Name != "drop.bin" {
		t.Errorf("Name = %q", ref.Name)
	}
	if ref.URI != "file:///var/data/drop.bin" {
		t.Errorf("URI = %q", ref.URI)
	}
}
