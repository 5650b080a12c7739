// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/additionalbeans/buildconv/internal/config"
	"github.com/additionalbeans/buildconv/internal/engine"
	"github.com/additionalbeans/buildconv/internal/issue"
	"github.com/additionalbeans/buildconv/internal/locate"
	"github.com/additionalbeans/buildconv/pkg/bom"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/publish"
	"github.com/additionalbeans/buildconv/pkg/taskgraph"
	"github.com/additionalbeans/buildconv/pkg/types"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

// errLockOutOfDate is returned by `bom --check` when the lock file differs
// from the freshly generated constraint sets.
var errLockOutOfDate = errors.New("lock file is out of date")

// ServiceError is an error that carries rendering information for the CLI
// layer: the catalog entry explaining it and the exit status it maps to.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// Code is the exit status; zero defers to exitCodeFor.
	Code types.ExitCode
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, code types.ExitCode) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, Code: code}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classify attaches a catalog entry and exit status to err. The most
// specific sentinel wins; the rest fall through to configuration or plain
// failure.
func classify(err error) *ServiceError {
	if svcErr, ok := errors.AsType[*ServiceError](err); ok {
		return svcErr
	}
	rules := []struct {
		target error
		id     issue.Id
		code   types.ExitCode
	}{
		{convention.ErrUnknownLayer, issue.UnknownLayerId, types.ExitConfiguration},
		{convention.ErrLayerCycle, issue.LayerCycleId, types.ExitConfiguration},
		{convention.ErrUnsetProperty, issue.UnsetPropertyId, types.ExitConfiguration},
		{bom.ErrUnsetVersion, issue.UnsetVersionId, types.ExitConfiguration},
		{workspace.ErrUnknownProject, issue.UnknownProjectId, types.ExitConfiguration},
		{taskgraph.ErrTaskCycle, issue.TaskCycleId, types.ExitConfiguration},
		{engine.ErrUnknownModule, issue.UnknownModuleId, types.ExitUsage},
		{taskgraph.ErrUnknownTask, issue.UnknownTaskId, types.ExitUsage},
		{publish.ErrNoPublishRepository, issue.NoPublishRepositoryId, types.ExitConfiguration},
		{locate.ErrResolution, issue.ResolutionFailedId, types.ExitResolution},
		{errLockOutOfDate, issue.LockOutOfDateId, types.ExitFailure},
		{errNoTasks, 0, types.ExitUsage},
		{errUnknownIssue, 0, types.ExitUsage},
		{bom.ErrInvalidFormat, 0, types.ExitUsage},
		{errNotPublished, 0, types.ExitFailure},
		{errWorkspaceNotFound, issue.WorkspaceNotFoundId, types.ExitConfiguration},
		{errConfigLoad, issue.ConfigInvalidId, types.ExitConfiguration},
		{config.ErrInvalidPropertyOverride, issue.ConfigInvalidId, types.ExitUsage},
		{convention.ErrConfiguration, issue.WorkspaceInvalidId, types.ExitConfiguration},
	}
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return newServiceError(err, r.id, r.code)
		}
	}
	if ae, ok := errors.AsType[*issue.ActionableError](err); ok && ae.Issue != 0 {
		return newServiceError(err, ae.Issue, exitCodeFor(err))
	}
	return newServiceError(err, 0, exitCodeFor(err))
}

// renderServiceError writes the error and, when it has one, a pointer to its
// catalog entry. Verbose output renders the entry in full.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, verbose bool, glamourStyle string) {
	if svcErr == nil {
		return
	}
	fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("error:"), formatErrorForDisplay(svcErr.Err, verbose))

	entry := issue.Get(svcErr.IssueID)
	if entry == nil {
		return
	}
	if !verbose {
		if ae, ok := errors.AsType[*issue.ActionableError](svcErr.Err); ok && ae.Issue == svcErr.IssueID {
			return
		}
		fmt.Fprintln(stderr, SubtitleStyle.Render("Run 'buildconv explain "+entry.Name()+"' for details."))
		return
	}
	rendered, err := entry.Render(glamourStyle)
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issue", entry.Name(), "err", err)
		return
	}
	fmt.Fprint(stderr, rendered)
}

// formatErrorForDisplay uses ActionableError formatting when available.
func formatErrorForDisplay(err error, verbose bool) string {
	if ae, ok := errors.AsType[*issue.ActionableError](err); ok {
		return ae.Format(verbose)
	}
	return err.Error()
}
