//go:build windows

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

var (
	kernel32        = syscall.NewLazyDLL("kernel32.dll")
	procCreateMutex = kernel32.NewProc("CreateMutexW")
	user32          = syscall.NewLazyDLL("user32.dll")
	procFindWindow  = user32.NewProc("FindWindowW")
	procSetFGWindow = user32.NewProc("SetForegroundWindow")
	procShowWindow  = user32.NewProc("ShowWindow")
)

// ensureSingleInstance checks that no other DropDock instance is running.
// Returns a cleanup function to call on exit, or exits the process after
// bringing the existing window to the front.
func ensureSingleInstance() func() {
	mutexName, _ := syscall.UTF16PtrFromString("Global\\DropDock_SingleInstance")

	handle, _, err := procCreateMutex.Call(0, 0, uintptr(unsafe.Pointer(mutexName)))
	if handle == 0 {
		fmt.Println("failed to create instance mutex")
		os.Exit(1)
	}

	if err == syscall.ERROR_ALREADY_EXISTS {
		fmt.Println("DropDock is already running")
		bringExistingWindowToFront()
		os.Exit(0)
	}

	// Also create a lock file as a secondary indicator
	lockPath := filepath.Join(AppDataDir(), "dropdock.lock")
	lockFile, _ := os.Create(lockPath)
	if lockFile != nil {
		fmt.Fprintf(lockFile, "%d", os.Getpid())
	}

	return func() {
		syscall.CloseHandle(syscall.Handle(handle))
		if lockFile != nil {
			lockFile.Close()
		}
		os.Remove(lockPath)
	}
}

func bringExistingWindowToFront() {
	title, _ := syscall.UTF16PtrFromString("DropDock")
	hwnd, _, _ := procFindWindow.Call(0, uintptr(unsafe.Pointer(title)))
	if hwnd != 0 {
		const SW_RESTORE = 9
		procShowWindow.Call(hwnd, SW_RESTORE)
		procSetFGWindow.Call(hwnd)
	}
}
