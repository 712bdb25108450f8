package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/generapi/generapi/internal/server/api/handler"
)

type List struct {
	JSON    bool         `help:"Print the catalog as JSON, as served by GET /blueprints"`
	Catalog CatalogFlags `embed:"" prefix:"catalog."`
}

// Run is called by Kong when the list command is executed.
func (l *List) Run() error {
	return l.Execute(os.Stdout)
}

func (l *List) Execute(out io.Writer) error {
	b, err := l.Catalog.Load()
	if err != nil {
		return err
	}
	cat, err := b.Catalog()
	if err != nil {
		return err
	}
	desc := handler.Describe(b.Family(), cat)
	if l.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tPLACEHOLDERS")
	for _, bp := range desc.Blueprints {
		phs := make([]string, 0, len(bp.Placeholders))
		for _, ph := range bp.Placeholders {
			s := ph.Name + ":" + ph.Kind
			if !ph.Required {
				s += "?"
			}
			phs = append(phs, s)
		}
		path := bp.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", bp.ID, path, strings.Join(phs, " "))
	}
	return tw.Flush()
}
