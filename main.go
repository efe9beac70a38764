package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var appIconPNG []byte

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "show this help")
	flag.Parse()

	if showHelp {
		fmt.Println("DropDock — drag files onto the window to collect, preview and share them")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Printf("  %s [options]\n", os.Args[0])
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -help    show this help")
		fmt.Println()
		fmt.Printf("Settings and drop history live in %s\n", AppDataDir())
		return
	}

	cfg := LoadConfig()

	logFile, err := InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("logger init failed: %v\n", err)
	} else {
		defer logFile.Close()
	}

	cleanup := ensureSingleInstance()
	defer cleanup()

	bridge := NewDropBridge()

	history, err := OpenDropHistory(DataPath("history.db"), cfg.RetentionDays)
	if err != nil {
		// the app still runs without history, drops just aren't persisted
		Log.Error("drop history unavailable", "error", err)
		history = nil
	}

	app := NewDesktopApp(cfg, bridge, history)

	err = wails.Run(&options.App{
		Title:             "DropDock",
		Width:             cfg.WindowWidth,
		Height:            cfg.WindowHeight,
		MinWidth:          480,
		MinHeight:         360,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnDomReady: app.onDomReady,
		OnShutdown: app.shutdown,
		Bind:       []interface{}{app},
	})
	if err != nil {
		Log.Error("wails run failed", "error", err)
		fmt.Printf("DropDock failed to start: %v\n", err)
		os.Exit(1)
	}
}
