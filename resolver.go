package main

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveLocations turns raw location identifiers into a DropBatch. Invalid
// identifiers are omitted, not replaced with placeholders; the relative order
// of the surviving entries matches the input. Empty or all-invalid input
// yields an empty (non-nil) batch.
func ResolveLocations(locations []string) DropBatch {
	batch := make(DropBatch, 0, len(locations))
	for _, loc := range locations {
		ref, ok := resolveLocation(loc)
		if !ok {
			Log.Debug("resolver: dropped unusable location", "location", loc)
			continue
		}
		batch = append(batch, ref)
	}
	return batch
}

// resolveLocation accepts file:// URIs (the frontend reads text/uri-list from
// the drop payload) and absolute native paths (the Windows drop target hands
// over raw CF_HDROP paths). Anything else — relative references, other
// schemes, unparseable strings — is rejected.
func resolveLocation(loc string) (FileReference, bool) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return FileReference{}, false
	}

	if strings.HasPrefix(strings.ToLower(loc), "file:") {
		return resolveFileURI(loc)
	}

	if !isAbsolutePath(loc) {
		return FileReference{}, false
	}
	path := filepath.Clean(loc)
	return FileReference{
		URI:  (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(),
		Path: path,
		Name: filepath.Base(path),
	}, true
}

func resolveFileURI(loc string) (FileReference, bool) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme != "file" {
		return FileReference{}, false
	}
	// file URIs from local drags carry no meaningful authority
	if u.Host != "" && u.Host != "localhost" {
		return FileReference{}, false
	}
	path := u.Path // percent-decoded by url.Parse
	if path == "" {
		return FileReference{}, false
	}
	// file:///C:/a.txt parses with a leading slash before the drive letter
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.FromSlash(path)
	return FileReference{
		URI:  loc,
		Path: path,
		Name: filepath.Base(path),
	}, true
}

// isAbsolutePath treats drive-letter paths as absolute on every platform so
// batches recorded on Windows resolve identically everywhere.
func isAbsolutePath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}
