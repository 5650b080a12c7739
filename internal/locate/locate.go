// SPDX-License-Identifier: MPL-2.0

// Package locate checks that declared coordinates exist in the resolution
// repositories. It asks each Maven repository for the artifact's POM and
// never downloads or resolves anything transitively.
package locate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/additionalbeans/buildconv/internal/metrics"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
	"github.com/additionalbeans/buildconv/pkg/publish"
)

const (
	// DefaultTimeout bounds one repository request.
	DefaultTimeout = 10 * time.Second
	// DefaultConcurrency bounds the coordinates probed at once.
	DefaultConcurrency = 8

	// StatusFound means some repository serves the POM.
	StatusFound Status = "found"
	// StatusMissing means no repository serves the POM.
	StatusMissing Status = "missing"
	// StatusSkipped means the coordinate has no version of its own; an
	// imported platform manages it.
	StatusSkipped Status = "skipped"
)

var (
	// ErrResolution is wrapped by every failure to locate a declared coordinate.
	ErrResolution = errors.New("dependency resolution failed")
	// ErrInsecureRepository is returned for an http:// repository that does not
	// allow insecure protocols.
	ErrInsecureRepository = errors.New("repository uses an insecure protocol")
)

type (
	// Status is the outcome of locating one coordinate.
	Status string

	// Item is a coordinate declared by a module.
	Item struct {
		Module     string
		Coordinate coordinate.Coordinate
	}

	// Result is the outcome for one distinct coordinate.
	Result struct {
		Coordinate coordinate.Coordinate `json:"coordinate"`
		// Modules lists the modules that declare the coordinate, sorted.
		Modules []string `json:"modules"`
		Status  Status   `json:"status"`
		// Repository is the first repository that served the POM.
		Repository string `json:"repository,omitempty"`
		// Problems holds per-repository failures other than "not found".
		Problems []error `json:"-"`
	}

	// Report lists every distinct coordinate in sorted order.
	Report struct {
		Results []Result `json:"results"`
	}

	// ResolutionError lists every coordinate that no repository provides.
	ResolutionError struct {
		Missing []Result
	}

	// Options configures a Locator.
	Options struct {
		// Client defaults to a client without an overall timeout; per-request
		// deadlines come from Timeout.
		Client      *http.Client
		Timeout     time.Duration
		Concurrency int
		Logger      *log.Logger
		Metrics     *metrics.Recorder
	}

	// Locator probes a fixed, ordered list of repositories.
	Locator struct {
		repos   []publish.Repository
		client  *http.Client
		timeout time.Duration
		limit   int
		logger  *log.Logger
		metrics *metrics.Recorder
	}
)

// Error implements the error interface for ResolutionError.
func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d declared dependenc", len(e.Missing))
	if len(e.Missing) == 1 {
		sb.WriteString("y was")
	} else {
		sb.WriteString("ies were")
	}
	sb.WriteString(" not found in any repository:")
	for _, m := range e.Missing {
		fmt.Fprintf(&sb, "\n  %s (declared by %s)", m.Coordinate, strings.Join(m.Modules, ", "))
		for _, p := range m.Problems {
			fmt.Fprintf(&sb, "\n    %v", p)
		}
	}
	return sb.String()
}

// Unwrap returns ErrResolution for errors.Is() compatibility.
func (e *ResolutionError) Unwrap() error { return ErrResolution }

// Missing returns the results no repository provided.
func (r *Report) Missing() []Result {
	return r.filter(StatusMissing)
}

// Found returns the results some repository provided.
func (r *Report) Found() []Result {
	return r.filter(StatusFound)
}

// Skipped returns the versionless results.
func (r *Report) Skipped() []Result {
	return r.filter(StatusSkipped)
}

func (r *Report) filter(s Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res)
		}
	}
	return out
}

// New returns a Locator over repos, searched in order.
func New(repos []publish.Repository, opts Options) *Locator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Locator{
		repos:   slices.Clone(repos),
		client:  cmp.Or(opts.Client, &http.Client{}),
		timeout: cmp.Or(opts.Timeout, DefaultTimeout),
		limit:   cmp.Or(opts.Concurrency, DefaultConcurrency),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Verify locates every distinct versioned coordinate among items. The report
// is always returned; the error is a *ResolutionError when anything is
// missing, or the context error when ctx ends first.
func (l *Locator) Verify(ctx context.Context, items []Item) (*Report, error) {
	byCoord := make(map[coordinate.Coordinate][]string)
	for _, it := range items {
		mods := byCoord[it.Coordinate]
		if !slices.Contains(mods, it.Module) {
			byCoord[it.Coordinate] = append(mods, it.Module)
		}
	}
	coords := make([]coordinate.Coordinate, 0, len(byCoord))
	for c := range byCoord {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b coordinate.Coordinate) int {
		return cmp.Compare(a.String(), b.String())
	})

	report := &Report{Results: make([]Result, len(coords))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, c := range coords {
		mods := byCoord[c]
		slices.Sort(mods)
		if !c.HasVersion() {
			report.Results[i] = Result{Coordinate: c, Modules: mods, Status: StatusSkipped}
			l.metrics.LocateProbe(metrics.ProbeSkipped)
			continue
		}
		g.Go(func() error {
			res, err := l.locate(gctx, c)
			if err != nil {
				return err
			}
			res.Modules = mods
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	if missing := report.Missing(); len(missing) > 0 {
		return report, &ResolutionError{Missing: missing}
	}
	return report, nil
}

// locate searches the repositories in order. Only context errors abort.
func (l *Locator) locate(ctx context.Context, c coordinate.Coordinate) (Result, error) {
	res := Result{Coordinate: c, Status: StatusMissing}
	for _, repo := range l.repos {
		found, err := l.probe(ctx, repo, c)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		switch {
		case err != nil:
			l.logger.Warn("repository probe failed", "coordinate", c, "repository", repo.Name, "err", err)
			l.metrics.LocateProbe(metrics.ProbeError)
			res.Problems = append(res.Problems, fmt.Errorf("%s: %w", repo.Name, err))
		case found:
			l.logger.Debug("found", "coordinate", c, "repository", repo.Name)
			l.metrics.LocateProbe(metrics.ProbeFound)
			res.Status = StatusFound
			res.Repository = repo.Name
			return res, nil
		default:
			l.logger.Debug("not found", "coordinate", c, "repository", repo.Name)
			l.metrics.LocateProbe(metrics.ProbeMissing)
		}
	}
	return res, nil
}

// probe asks repo for the coordinate's POM with HEAD, falling back to GET
// for servers that do not implement HEAD.
func (l *Locator) probe(ctx context.Context, repo publish.Repository, c coordinate.Coordinate) (bool, error) {
	target, err := POMURL(repo.URL, c)
	if err != nil {
		return false, err
	}
	if strings.HasPrefix(target, "http://") && !repo.AllowInsecureProtocol {
		return false, fmt.Errorf("%w: %s", ErrInsecureRepository, repo.URL)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	status, err := l.do(ctx, http.MethodHead, target, repo.Credentials)
	if err != nil {
		return false, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = l.do(ctx, http.MethodGet, target, repo.Credentials)
		if err != nil {
			return false, err
		}
	}

	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d for %s", status, target)
	}
}

func (l *Locator) do(ctx context.Context, method, target string, creds *publish.Credentials) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	if creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// POMURL returns the Maven repository layout URL of the coordinate's POM:
// <base>/<group with dots as slashes>/<artifact>/<version>/<artifact>-<version>.pom
func POMURL(base string, c coordinate.Coordinate) (string, error) {
	if !c.HasVersion() {
		return "", fmt.Errorf("coordinate %s has no version", c)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL %q: %w", base, err)
	}
	return u.JoinPath(
		strings.ReplaceAll(c.Group, ".", "/"),
		c.Artifact,
		c.Version,
		c.Artifact+"-"+c.Version+".pom",
	).String(), nil
}
