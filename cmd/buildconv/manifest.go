// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/issue"
)

func newManifestCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "manifest <module>",
		Short: "Print the JAR manifest of a module",
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
				if outFile != "" {
					if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
						return issue.WrapWithContext(err, "write manifest", outFile)
					}
					if err := os.WriteFile(outFile, m.Manifest.Bytes(), 0o644); err != nil {
						return issue.WrapWithContext(err, "write manifest", outFile)
					}
					return nil
				}
				if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, m.Manifest); ok {
					return err
				}
				_, err = m.Manifest.WriteTo(s.stdout())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "write MANIFEST.MF to this file")
	return cmd
}
