// Package util lets a double-clicked generapi binary on Windows start the API instead of
// printing usage into a console that closes at once.
package util

import "strings"

// cliParents are shells and terminals; a binary started from one is used as a CLI.
var cliParents = []string{
	"cmd.exe",
	"powershell.exe",
	"pwsh.exe",
	"wt.exe",
	"windowsterminal.exe",
	"conhost.exe",
	"bash.exe",
	"mintty.exe",
	"nu.exe",
	"wezterm-gui.exe",
	"alacritty.exe",
}

func isCLIParent(name string) bool {
	for _, cli := range cliParents {
		if strings.EqualFold(name, cli) {
			return true
		}
	}
	return false
}

// launchedFromGUI decides from the parent process image name and whether a console is
// attached. Without a console there is no CLI to print to.
func launchedFromGUI(parent string, hasConsole bool) bool {
	switch {
	case !hasConsole:
		return true
	case isCLIParent(parent):
		return false
	}
	return strings.EqualFold(parent, "explorer.exe")
}

// WithDefaultCommand returns args with cmd inserted after the program name, unless
// cmd is already the first argument.
func WithDefaultCommand(args []string, cmd string) []string {
	if len(args) > 1 && args[1] == cmd {
		return args
	}
	out := make([]string, 0, len(args)+1)
	if len(args) > 0 {
		out = append(out, args[0])
	}
	out = append(out, cmd)
	if len(args) > 1 {
		out = append(out, args[1:]...)
	}
	return out
}
