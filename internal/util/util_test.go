package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaultCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "no arguments", args: []string{"generapi.exe"}, want: []string{"generapi.exe", "serve"}},
		{name: "flags kept", args: []string{"generapi.exe", "--log.level=debug"}, want: []string{"generapi.exe", "serve", "--log.level=debug"}},
		{name: "already serving", args: []string{"generapi.exe", "serve", "--api.addr=:8080"}, want: []string{"generapi.exe", "serve", "--api.addr=:8080"}},
		{name: "empty", args: nil, want: []string{"serve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithDefaultCommand(tt.args, "serve"))
		})
	}
}

func TestLaunchedFromGUI(t *testing.T) {
	tests := []struct {
		parent  string
		console bool
		want    bool
	}{
		{parent: "explorer.exe", console: true, want: true},
		{parent: "Explorer.EXE", console: true, want: true},
		{parent: "cmd.exe", console: true, want: false},
		{parent: "WindowsTerminal.exe", console: true, want: false},
		{parent: "bash.exe", console: true, want: false},
		{parent: "code.exe", console: true, want: false},
		{parent: "cmd.exe", console: false, want: true},
		{parent: "", console: false, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			assert.Equal(t, tt.want, launchedFromGUI(tt.parent, tt.console))
		})
	}
}
