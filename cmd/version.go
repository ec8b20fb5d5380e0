package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set at build time via ldflags (-X main.Version=...).
var Version = "v0.1.0"

// PrintVersion prints the current version
func PrintVersion() {
	fmt.Printf("pool-watcher %s\n", Version)
	fmt.Printf("Runtime: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		fmt.Printf("Module: %s@%s\n", info.Main.Path, info.Main.Version)
	}
}
