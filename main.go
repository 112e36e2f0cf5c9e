package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atomicstack/treecombo/internal/app"
	"github.com/atomicstack/treecombo/internal/config"
	"github.com/atomicstack/treecombo/internal/logging"
	"github.com/atomicstack/treecombo/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	traceStartup(runtimeCfg)

	if err := app.Run(runtimeCfg.App); err != nil {
		if errors.Is(err, app.ErrCancelled) {
			os.Exit(1)
		}
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]any {
	flags := make(map[string]any, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	src := map[string]any{
		"kind": cfg.App.Source.Kind,
		"path": cfg.App.Source.Path,
	}
	payload := map[string]any{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   cfg,
		"file":     cfg.File,
		"source":   src,
		"search":   cfg.App.Search,
		"terminal": probeTerminal(os.Stderr.Fd(), os.Stdout.Fd()),
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}

// terminalInfo records where the picker draws and whether the result is piped.
type terminalInfo struct {
	Interactive bool   `json:"interactive"`
	Piped       bool   `json:"piped"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Error       string `json:"error,omitempty"`
}

func probeTerminal(ui, out uintptr) terminalInfo {
	info := terminalInfo{
		Interactive: term.IsTerminal(int(ui)),
		Piped:       !term.IsTerminal(int(out)),
	}
	if !info.Interactive {
		return info
	}
	width, height, err := term.GetSize(int(ui))
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Width, info.Height = width, height
	return info
}
