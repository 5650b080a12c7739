// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/locate"
)

func newVerifyCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that declared dependencies exist in the resolution repositories",
		Long: `Ask the resolution repositories for the POM of every external coordinate the
workspace declares: dependencies, imported platforms and the style checker.
Coordinates without a version are managed by an imported platform and are
skipped. Nothing is downloaded and transitive dependencies are not followed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				plan, err := s.plan(ctx)
				if err != nil {
					return err
				}
				loc := locate.New(plan.Repositories.Resolution, locate.Options{
					Client:      app.HTTPClient,
					Timeout:     s.cfg.Locate.Timeout,
					Concurrency: s.cfg.Locate.Concurrency,
					Logger:      s.logger,
					Metrics:     s.metrics,
				})
				report, verifyErr := loc.Verify(ctx, plan.LocateItems())
				if report != nil {
					if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, report); ok {
						if err != nil {
							return err
						}
						return verifyErr
					}
					renderReport(s, report)
				}
				return verifyErr
			})
		},
	}
}

func renderReport(s *session, report *locate.Report) {
	t := newTable(s.stdout())
	t.AppendHeader(table.Row{"", "Coordinate", "Declared by", "Repository"})
	for _, r := range report.Results {
		icon := successIcon
		switch r.Status {
		case locate.StatusMissing:
			icon = errorIcon
		case locate.StatusSkipped:
			icon = warningIcon
		}
		repo := r.Repository
		if repo == "" {
			repo = emptyCell
		}
		t.AppendRow(table.Row{icon, r.Coordinate.String(), strings.Join(r.Modules, ", "), repo})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d found, %d missing, %d skipped",
		len(report.Found()), len(report.Missing()), len(report.Skipped())), "", ""})
	t.Render()
}
