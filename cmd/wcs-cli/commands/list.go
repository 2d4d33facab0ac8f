package commands

import (
	"os"

	"wcs-backend/lib/source"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists every available source.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Title", "URL", "Test cases"})
		for _, info := range source.All() {
			t.AppendRow(table.Row{info.Name, info.Title, info.URL, len(lo.Keys(info.TestCases))})
		}
		t.Render()
	},
}
