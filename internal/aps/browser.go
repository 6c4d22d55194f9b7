package aps

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startCommand launches a command without waiting for it; indirection for
// tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser opens the URL in the default web browser on Linux, macOS or
// Windows. Callers treat a failure as non-fatal: the URL is always logged
// as a fallback for headless environments.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return startCommand("xdg-open", url)
	case "darwin":
		return startCommand("open", url)
	case "windows":
		return startCommand("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
