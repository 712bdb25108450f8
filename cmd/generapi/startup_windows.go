//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/generapi/generapi/internal/util"
)

// A double-clicked binary has no arguments; start the API instead of printing usage.
func init() {
	if !util.IsRunFromGUI() {
		return
	}
	if args := util.WithDefaultCommand(os.Args, "serve"); len(args) != len(os.Args) {
		slog.Info("Started from Explorer, running 'generapi serve'")
		slog.Warn("Run generapi from a terminal for the generate, render and list commands")
		os.Args = args
	}
}
