// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/engine"
)

func newPlanCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Summarize the conventions every module gets",
		Long: `Evaluate the workspace and print one row per module: its version, the
convention layers it applies, whether it is a platform module, the state of
its integration suite and the repository it publishes to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				plan, err := s.plan(ctx)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, plan); ok {
					return err
				}
				renderPlanTable(s, plan)
				return nil
			})
		},
	}
}

func renderPlanTable(s *session, plan *engine.Plan) {
	t := newTable(s.stdout())
	t.AppendHeader(table.Row{"Module", "Version", "Layers", "Platform", "Integration", "Publishes to"})
	for _, m := range plan.Modules {
		eff := m.Effective
		t.AppendRow(table.Row{
			eff.Module,
			eff.Version,
			strings.Join(eff.Layers, " > "),
			yesNo(eff.Platform),
			integrationCell(m),
			publishCell(m),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d modules", len(plan.Modules)), "", "", "", "", ""})
	t.Render()
}

func integrationCell(m *engine.ModulePlan) string {
	if m.Topology == nil || m.Topology.Integration == nil {
		return emptyCell
	}
	state := "on demand"
	if m.Topology.IntegrationActive {
		state = "in check"
	}
	return m.Topology.Integration.Name + " (" + state + ")"
}

func publishCell(m *engine.ModulePlan) string {
	if m.Publish == nil {
		return emptyCell
	}
	return m.Publish.Repository.Name
}
