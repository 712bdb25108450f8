//go:build !windows

package util

// IsRunFromGUI is always false off Windows; start the API with `generapi serve`.
func IsRunFromGUI() bool { return false }

func HideConsoleWindow() {}
