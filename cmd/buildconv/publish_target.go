// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/publish"
)

var errNotPublished = errors.New("module applies no publishing layer")

func newPublishTargetCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "publish-target <module>",
		Short: "Show the repository a module publishes to",
		Long: `Show the repository a module publishes to. Versions ending with the
snapshot suffix (default -SNAPSHOT) go to the snapshot repository; every
other version goes to the release repository.

Publishing repositories hang off the ` + convention.PropertyRepoURLPrefix + ` property.`,
		Args: cobra.ExactArgs(1),
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
				if m.Effective.Publishing == nil {
					return fmt.Errorf("%w: %s", errNotPublished, args[0])
				}
				if !plan.Repositories.Publishable() {
					return fmt.Errorf("%w: set the %s property", publish.ErrNoPublishRepository, convention.PropertyRepoURLPrefix)
				}
				target := *m.Publish
				if version != "" {
					if target, err = plan.Repositories.Select(version); err != nil {
						return err
					}
				}
				if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, target); ok {
					return err
				}
				renderTarget(s, args[0], target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "select for this version instead of the module's")
	return cmd
}

func renderTarget(s *session, module string, target publish.Target) {
	user := emptyCell
	if c := target.Repository.Credentials; c != nil && c.Username != "" {
		user = c.Username
	}
	keyValueTable(s.stdout(), module, [][2]string{
		{"Version", target.Version},
		{"Snapshot", yesNo(target.Snapshot)},
		{"Repository", target.Repository.Name},
		{"URL", target.Repository.URL},
		{"User", user},
	})
}
