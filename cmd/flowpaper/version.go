package main

import (
	"fmt"
	"io"
	"runtime"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0" ./cmd/flowpaper/
var version = "dev"

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "flowpaper %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
}
