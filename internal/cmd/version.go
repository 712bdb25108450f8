package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/generapi/generapi/internal/version"
)

type Version struct{}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error { return v.Execute(os.Stdout) }

func (v *Version) Execute(out io.Writer) error {
	ver, err := version.Get()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "generapi %s %s/%s\n", ver, runtime.GOOS, runtime.GOARCH)
	return err
}
