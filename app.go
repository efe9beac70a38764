package main

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/ra1phdd/systray-on-wails"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// DesktopApp is the Wails application binding struct.
// Methods on this struct are exposed to the frontend via window.go.main.DesktopApp.
type DesktopApp struct {
	ctx     context.Context
	cfg     *AppConfig
	bridge  *DropBridge
	history *DropHistory
	share   *ShareServer

	// dragQueue serializes boundary events onto one dispatch goroutine so the
	// bridge processes them strictly in emission order and Handle is never
	// re-entered (Wails event callbacks and the COM thread are not).
	dragQueue chan DragMessage

	hoverSub *HoverSubscription
	dropSub  *DropSubscription

	mu      sync.Mutex
	closing bool
}

// NewDesktopApp creates a new DesktopApp instance. history may be nil when
// the store failed to open; the app degrades to an in-session-only view.
func NewDesktopApp(cfg *AppConfig, bridge *DropBridge, history *DropHistory) *DesktopApp {
	return &DesktopApp{
		cfg:       cfg,
		bridge:    bridge,
		history:   history,
		share:     NewShareServer(cfg.SharePort),
		dragQueue: make(chan DragMessage, 64),
	}
}

// startup is called when the Wails app starts.
func (a *DesktopApp) startup(ctx context.Context) {
	a.ctx = ctx
	beeep.AppName = "DropDock"

	// Bridge consumers must be wired before any native event can arrive:
	// the drop stream has no replay for late subscribers.
	a.bridge.OnPosition = func(x, y float64) {
		wailsRuntime.EventsEmit(a.ctx, EventDragPosition, x, y)
	}
	a.hoverSub = a.bridge.Hover().Subscribe(func(hovering bool) {
		wailsRuntime.EventsEmit(a.ctx, EventHoverChanged, hovering)
	})
	a.dropSub = a.bridge.Drops().Subscribe(a.consumeBatch, nil)

	go a.dispatchLoop()

	// Inbound boundary channel from the frontend drag listeners.
	wailsRuntime.EventsOn(ctx, EventDragBoundary, func(args ...interface{}) {
		if len(args) == 0 {
			return
		}
		name, ok := args[0].(string)
		if !ok {
			return
		}
		var payload interface{}
		if len(args) > 1 {
			payload = args[1]
		}
		a.ForwardDragEvent(name, payload)
	})

	// Native interception path (Windows only; no-op elsewhere).
	setupNativeFileDrop(a.ForwardDragEvent)

	if a.cfg.ShareEnabled {
		if err := a.share.Start(); err != nil {
			Log.Error("share server start failed", "error", err)
		}
	}

	a.initSystray()
	Log.Info("startup complete", "share", a.cfg.ShareEnabled, "history", a.history != nil)
}

// onDomReady is called when the webview DOM is fully loaded.
func (a *DesktopApp) onDomReady(ctx context.Context) {
	Log.Debug("dom ready")
}

// shutdown is called when the Wails app is closing.
func (a *DesktopApp) shutdown(ctx context.Context) {
	a.mu.Lock()
	a.closing = true
	a.mu.Unlock()

	// Save window size
	w, h := wailsRuntime.WindowGetSize(ctx)
	if w > 0 && h > 0 {
		a.cfg.WindowWidth = w
		a.cfg.WindowHeight = h
	}
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("config save failed", "error", err)
	}

	a.bridge.Close()
	a.share.Stop()
	a.history.Close()
	systray.Quit()
}

// ForwardDragEvent decodes one boundary message and queues it for dispatch.
// Called from Wails event callbacks and from the Windows COM thread; it must
// never block either, so a full queue drops the event with a warning.
func (a *DesktopApp) ForwardDragEvent(name string, payload interface{}) {
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	msg := DecodeDragEvent(name, payload)
	if msg.Kind == KindNone {
		Log.Debug("ignoring unknown drag event", "name", name)
		return
	}
	select {
	case a.dragQueue <- msg:
	default:
		Log.Warn("drag queue full, dropping event", "name", name)
	}
}

func (a *DesktopApp) dispatchLoop() {
	for msg := range a.dragQueue {
		a.bridge.Handle(msg)
	}
}

// consumeBatch runs for every delivered batch: push to the frontend, record
// history, notify, refresh the LAN share. Each leg is independent; one
// failing does not stop the others.
func (a *DesktopApp) consumeBatch(batch DropBatch) {
	wailsRuntime.EventsEmit(a.ctx, EventBatchDropped, batch)

	if len(batch) == 0 {
		return
	}
	if a.history != nil {
		if _, err := a.history.RecordBatch(batch); err != nil {
			Log.Error("history record failed", "error", err)
		}
	}
	if a.cfg.IsNotifications() {
		notifyBatch(batch)
	}
	a.share.SetBatch(batch)
}

// showWindow brings the application window to the foreground.
func (a *DesktopApp) showWindow() {
	wailsRuntime.Show(a.ctx)
	wailsRuntime.WindowUnminimise(a.ctx)
}

// toggleWindow shows the window if hidden/minimized, hides it if visible.
func (a *DesktopApp) toggleWindow() {
	visible, minimized := isAppWindowVisible()
	if visible && !minimized {
		wailsRuntime.Hide(a.ctx)
	} else {
		a.showWindow()
	}
}

// initSystray sets up the system tray icon and menu.
// Right-click: context menu. Double-click: toggle window visibility.
func (a *DesktopApp) initSystray() {
	systray.Register(func() {
		systray.SetIcon(trayIcon())
		systray.SetTooltip(fmt.Sprintf("DropDock v%s", AppVersion))

		mShow := systray.AddMenuItem("Show window", "Open the DropDock window")
		mQuit := systray.AddMenuItem("Quit", "Quit DropDock")

		subclassSystray(a.toggleWindow)

		go func() {
			for {
				select {
				case <-mShow.ClickedCh:
					a.showWindow()
				case <-mQuit.ClickedCh:
					wailsRuntime.Quit(a.ctx)
					return
				}
			}
		}()
	}, nil)
}

// GetDropHistory returns up to limit recorded batches, newest first.
func (a *DesktopApp) GetDropHistory(limit int) ([]BatchRecord, error) {
	if a.history == nil {
		return nil, fmt.Errorf("drop history unavailable")
	}
	return a.history.RecentBatches(limit)
}

// ClearDropHistory removes all recorded batches.
func (a *DesktopApp) ClearDropHistory() error {
	if a.history == nil {
		return fmt.Errorf("drop history unavailable")
	}
	return a.history.ClearHistory()
}

// IsHovering returns the current hover state (used by the frontend to sync
// after a reload, since observers only see changes).
func (a *DesktopApp) IsHovering() bool {
	return a.bridge.Hover().Get()
}

// SetShareEnabled toggles the LAN share endpoint and persists the choice.
func (a *DesktopApp) SetShareEnabled(enabled bool) error {
	a.cfg.ShareEnabled = enabled
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("config save failed", "error", err)
	}
	if enabled {
		if err := a.share.Start(); err != nil {
			return err
		}
	} else {
		a.share.Stop()
	}
	wailsRuntime.EventsEmit(a.ctx, EventShareChanged, a.share.Running(), a.share.Port())
	return nil
}

// SetNotificationsEnabled toggles drop notifications and persists the choice.
func (a *DesktopApp) SetNotificationsEnabled(enabled bool) {
	a.cfg.Notifications = &enabled
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("config save failed", "error", err)
	}
}

// SetLogLevel changes the log level at runtime and persists it.
func (a *DesktopApp) SetLogLevel(level string) {
	SetLogLevel(level)
	a.cfg.LogLevel = level
	if err := SaveConfig(a.cfg); err != nil {
		Log.Error("config save failed", "error", err)
	}
}

// RevealInExplorer opens the system file explorer at the given file path.
func (a *DesktopApp) RevealInExplorer(filePath string) error {
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("explorer", "/select,", filePath).Start()
	case "darwin":
		return exec.Command("open", "-R", filePath).Start()
	case "linux":
		return exec.Command("xdg-open", filepath.Dir(filePath)).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}

// OpenFile opens a file with its default application.
func (a *DesktopApp) OpenFile(filePath string) error {
	switch goruntime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", filePath).Start()
	case "darwin":
		return exec.Command("open", filePath).Start()
	case "linux":
		return exec.Command("xdg-open", filePath).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goruntime.GOOS)
	}
}

// SetWindowTheme switches the window title bar between dark and light.
func (a *DesktopApp) SetWindowTheme(theme string) {
	if theme == "light" {
		wailsRuntime.WindowSetLightTheme(a.ctx)
	} else {
		wailsRuntime.WindowSetDarkTheme(a.ctx)
	}
}

// GetAppInfo returns application info for the frontend.
func (a *DesktopApp) GetAppInfo() map[string]interface{} {
	return map[string]interface{}{
		"version":       AppVersion,
		"channel":       AppChannel(),
		"shareEnabled":  a.cfg.ShareEnabled,
		"sharePort":     a.share.Port(),
		"shareRunning":  a.share.Running(),
		"notifications": a.cfg.IsNotifications(),
		"logLevel":      GetLogLevel(),
	}
}
