//go:build !windows

package main

// setupNativeFileDrop is a no-op on non-Windows platforms.
// There the frontend drag listeners feed the boundary channel directly;
// WebView2-specific drop interception is only needed on Windows.
func setupNativeFileDrop(forward func(name string, payload interface{})) {}
