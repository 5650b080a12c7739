// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/pkg/taskgraph"
)

var errNoTasks = errors.New("no task selected; pass task names or --all")

func newTasksCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tasks [task...]",
		Short: "Print the execution order of tasks",
		Long: `Print the tasks that running the given selectors would execute, in order.
A selector is a task path such as :core:test, or a bare task name that
selects the task in every module that has it.

With --all every task of the workspace is listed with its dependencies.`,
		Example: `  buildconv tasks build
  buildconv tasks :core:integrationTest
  buildconv tasks check -P integration`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				if !all && len(args) == 0 {
					return errNoTasks
				}
				plan, err := s.plan(ctx)
				if err != nil {
					return err
				}
				if all {
					return listTasks(s, plan.Tasks)
				}
				order, err := plan.Tasks.Plan(args...)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, order); ok {
					return err
				}
				for i, path := range order {
					fmt.Fprintf(s.stdout(), "%3d  %s\n", i+1, NameStyle.Render(path))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every task of the workspace")
	return cmd
}

func listTasks(s *session, g *taskgraph.Graph) error {
	tasks := g.Tasks()
	if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, tasks); ok {
		return err
	}
	t := newTable(s.stdout())
	t.AppendHeader(table.Row{"Task", "Group", "Depends on", "Runs after"})
	for _, task := range tasks {
		t.AppendRow(table.Row{
			task.Path,
			task.Group,
			joinOrEmpty(task.DependsOn, "\n"),
			joinOrEmpty(task.ShouldRunAfter, "\n"),
		})
	}
	t.Render()
	return nil
}
