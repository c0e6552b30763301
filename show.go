// File: show.go
package main

import (
	"os/exec"
	"runtime"
)

// viewerCommand returns the command that opens path in the desktop viewer.
func viewerCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// showImage hands the chart to the system viewer and does not wait for it.
func showImage(path string) error {
	return viewerCommand(runtime.GOOS, path).Start()
}
