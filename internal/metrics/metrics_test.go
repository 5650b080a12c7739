// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counts(t *testing.T) {
	t.Parallel()

	r := New()
	r.ModuleResolved()
	r.ModuleResolved()
	r.ConstraintsEmitted("platform-bom", 3)
	r.LocateProbe(ProbeFound)
	r.LocateProbe(ProbeMissing)
	r.LocateProbe(ProbeFound)
	r.ObserveResolution(20 * time.Millisecond)

	if got := testutil.ToFloat64(r.modulesResolved); got != 2 {
		t.Errorf("modules resolved = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.constraintsEmitted.WithLabelValues("platform-bom")); got != 3 {
		t.Errorf("constraints = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.locateProbes.WithLabelValues(ProbeFound)); got != 2 {
		t.Errorf("found probes = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(r.resolutionDuration); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.ModuleResolved()
	r.ConstraintsEmitted("x", 1)
	r.LocateProbe(ProbeError)
	r.ObserveResolution(time.Second)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatalf("nil WriteTextfile() error = %v", err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.ModuleResolved()
	path := filepath.Join(t.TempDir(), "buildconv.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "buildconv_modules_resolved_total 1") {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}
