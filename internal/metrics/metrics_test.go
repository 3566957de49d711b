package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/course-planner/internal/csp"
	"github.com/Veraticus/course-planner/internal/search"
)

func TestObserveCSP(t *testing.T) {
	r := New()
	r.ObserveCSP(&csp.Result{
		NumOperations:         40,
		NumAssignments:        3,
		NumOptimalAssignments: 2,
		OptimalWeight:         6,
		Duration:              5 * time.Millisecond,
	}, nil)
	r.ObserveCSP(&csp.Result{NumOperations: 10}, nil)

	assert.InDelta(t, 50.0, testutil.ToFloat64(r.operations.WithLabelValues("csp")), 1e-9)
	assert.InDelta(t, 3.0, testutil.ToFloat64(r.assignments.WithLabelValues("csp")), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(r.optimal.WithLabelValues("csp")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("csp", StatusSolved)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("csp", StatusUnsatisfiable)), 1e-9)
}

func TestObserveUCS(t *testing.T) {
	r := New()
	r.ObserveUCS(&search.Result{Cost: 52, Expanded: 7, Satisfied: true}, time.Second, nil)
	r.ObserveUCS(nil, time.Second, fmt.Errorf("search interrupted: %w", context.DeadlineExceeded))
	r.ObserveUCS(nil, time.Second, errors.New("boom"))

	assert.InDelta(t, 7.0, testutil.ToFloat64(r.operations.WithLabelValues("ucs")), 1e-9)
	assert.InDelta(t, 52.0, testutil.ToFloat64(r.optimalWeight.WithLabelValues("ucs")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ucs", StatusSolved)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ucs", StatusInterrupted)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ucs", StatusError)), 1e-9)
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveCSP(&csp.Result{NumOperations: 12, NumOptimalAssignments: 1, OptimalWeight: 1}, nil)

	path := filepath.Join(t.TempDir(), "planner.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `planner_search_operations_total{engine="csp"} 12`)
	assert.Contains(t, string(data), `planner_search_runs_total{engine="csp",status="solved"} 1`)
}
