// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/engine"
	"github.com/additionalbeans/buildconv/pkg/suite"
)

func newResolveCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <module>",
		Short: "Show the effective configuration of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				plan, err := s.plan(ctx)
				if err != nil {
					return err
				}
				m, err := plan.Module(args[0])
				if err != nil {
					return err
				}
				if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, m); ok {
					return err
				}
				renderModule(s.stdout(), m)
				return nil
			})
		},
	}
}

func renderModule(w io.Writer, m *engine.ModulePlan) {
	eff := m.Effective

	rows := [][2]string{
		{"Coordinate", eff.Coordinate().String()},
		{"Layers", strings.Join(eff.Layers, " > ")},
		{"Platform", yesNo(eff.Platform)},
		{"Java release", strconv.Itoa(eff.Java.Release)},
		{"Encoding", eff.Java.Encoding},
		{"Compiler args", joinOrEmpty(eff.Java.CompilerArgs, " ")},
		{"Sources jar", yesNo(eff.Java.SourcesJar)},
		{"Plugins", joinOrEmpty(eff.Plugins, ", ")},
		{"BOM imports", joinOrEmpty(stringers(eff.DependencyManagement.Imports), ", ")},
	}
	if eff.Checkstyle != nil {
		rows = append(rows, [2]string{"Checkstyle", eff.Checkstyle.Tool.String()})
	}
	if eff.ArchitectureSkipped() {
		rows = append(rows, [2]string{"Architecture rules", "skipped"})
	} else {
		rows = append(rows, [2]string{"Architecture rules", strconv.Itoa(len(eff.Architecture.Rules))})
	}
	if eff.Publishing != nil {
		rows = append(rows, [2]string{"Publication", eff.Publishing.Publication})
	}
	if m.Publish != nil {
		rows = append(rows, [2]string{"Publishes to", m.Publish.Repository.URL})
	}
	keyValueTable(w, eff.Module, rows)

	if len(eff.Dependencies) > 0 {
		fmt.Fprintln(w)
		t := newTable(w)
		t.SetTitle("Dependencies")
		t.AppendHeader(table.Row{"Scope", "Dependency", "Transitive"})
		for _, d := range eff.Dependencies {
			target := d.Coordinate.String()
			if d.IsProject() {
				target = "project :" + d.Project
			}
			t.AppendRow(table.Row{d.Scope, target, yesNo(d.Transitive)})
		}
		t.Render()
	}

	if m.Topology != nil {
		fmt.Fprintln(w)
		t := newTable(w)
		t.SetTitle("Test suites")
		t.AppendHeader(table.Row{"Suite", "Kind", "Classpath", "Runs after", "In check"})
		t.AppendRow(suiteRow(m.Topology.Primary, true))
		if m.Topology.Integration != nil {
			t.AppendRow(suiteRow(*m.Topology.Integration, m.Topology.IntegrationActive))
		}
		t.Render()
	}
}

func suiteRow(s suite.Suite, inCheck bool) table.Row {
	return table.Row{
		s.Name,
		s.Kind,
		joinOrEmpty(s.Outputs, ", "),
		joinOrEmpty(s.ShouldRunAfter, ", "),
		yesNo(inCheck),
	}
}
