package commands

import (
	"fmt"
	"os"
	"sort"

	"wcs-backend/lib/source"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test <source>",
	Short: "Runs every declared test case of a source against the live website.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := source.Lookup(args[0])
		if err != nil {
			return err
		}

		labels := lo.Keys(info.TestCases)
		sort.Strings(labels)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.SetTitle(info.Title)
		t.AppendHeader(table.Row{"Test case", "Collections", "Error"})

		failed := 0
		for _, label := range labels {
			src, err := source.New(info.Name, info.TestCases[label])
			if err != nil {
				return err
			}
			entries, err := src.Fetch(cmd.Context())
			if err != nil {
				failed++
				t.AppendRow(table.Row{label, "-", err.Error()})
				continue
			}
			t.AppendRow(table.Row{label, len(entries), ""})
		}
		t.Render()

		if failed > 0 {
			return errTestCasesFailed{failed: failed, total: len(labels)}
		}
		return nil
	},
}

type errTestCasesFailed struct {
	failed int
	total  int
}

func (e errTestCasesFailed) Error() string {
	return fmt.Sprintf("%d of %d test cases failed", e.failed, e.total)
}
