// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/issue"
)

var errUnknownIssue = errors.New("unknown issue")

func newExplainCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain an error class and how to fix it",
		Long: `Render the catalog entry of an error class. Without an argument, list every
entry. Failed commands print the name to pass here.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(issue.Values()))
			for _, i := range issue.Values() {
				names = append(names, i.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, flags, func(_ context.Context, s *session) error {
				if len(args) == 0 {
					t := newTable(s.stdout())
					t.AppendHeader(table.Row{"Issue", "Title"})
					for _, i := range issue.Values() {
						t.AppendRow(table.Row{i.Name(), i.Title()})
					}
					t.Render()
					return nil
				}
				entry, ok := issue.Lookup(args[0])
				if !ok {
					return fmt.Errorf("%w: no catalog entry named %q", errUnknownIssue, args[0])
				}
				rendered, err := entry.Render(string(s.cfg.UI.ColorScheme))
				if err != nil {
					return err
				}
				fmt.Fprint(s.stdout(), rendered)
				return nil
			})
		},
	}
}
