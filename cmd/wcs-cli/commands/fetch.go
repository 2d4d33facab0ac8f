package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"wcs-backend/lib/collection"
	"wcs-backend/lib/source"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var fetchArgs *[]string
var fetchFormat *string
var fetchConfig *string

func init() {
	fetchArgs = fetchCmd.Flags().StringArrayP("arg", "a", nil, "A source argument as key=value, can be repeated.")
	fetchFormat = fetchCmd.Flags().StringP("format", "f", "table", "Output format: table, json or ics.")
	fetchConfig = fetchCmd.Flags().String("config", "sources.json5", "File with default arguments per source.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <source> [--arg key=value]... [--format table|json|ics]",
	Short: "Fetches the upcoming collections of a single source.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		info, err := source.Lookup(name)
		if err != nil {
			return err
		}

		cfg, err := readSourcesConfig(*fetchConfig)
		if err != nil {
			return err
		}
		sourceArgs, err := resolveArgs(cfg, info.Name, *fetchArgs)
		if err != nil {
			return err
		}

		src, err := source.New(info.Name, sourceArgs)
		if err != nil {
			return err
		}

		t1 := time.Now()
		entries, err := src.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		slog.Debug("fetch time", "source", info.Name, "seconds", time.Since(t1).Seconds())

		return writeCollections(os.Stdout, *fetchFormat, info, entries)
	},
}

type collectionJSON struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Icon string `json:"icon,omitempty"`
}

func writeCollections(w io.Writer, format string, info source.Info, entries []collection.Collection) error {
	switch format {
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle(info.Title)
		t.AppendHeader(table.Row{"Date", "Type", "Icon"})
		for _, c := range entries {
			t.AppendRow(table.Row{c.DateString(), c.Type, c.Icon})
		}
		t.Render()
		return nil
	case "json":
		out := make([]collectionJSON, 0, len(entries))
		for _, c := range entries {
			out = append(out, collectionJSON{Date: c.DateString(), Type: c.Type, Icon: c.Icon})
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "ics":
		return collection.WriteICS(w, info.Title, time.Now(), entries)
	}
	return fmt.Errorf("unknown format %q", format)
}
