// Package solver is the boundary to the mathematical-programming engine.
// The planner hands over a built milp.Model and gets back a boolean
// assignment; which engine runs the search is an implementation detail
// selected by configuration.
package solver

import (
	"context"

	"github.com/streamopt/cacheplan/internal/milp"
	"github.com/streamopt/cacheplan/logging"
)

var log = logging.Get()

type Status int

const (
	// StatusOptimal means the best found solution is proven within the
	// requested relative gap of the optimum.
	StatusOptimal Status = iota
	// StatusFeasible means a solution was found but the search stopped
	// before proving the gap, e.g. on the node limit.
	StatusFeasible
	// StatusNoSolution means the search finished its budget without
	// finding any feasible assignment.
	StatusNoSolution
	// StatusInfeasible means the model provably has no feasible
	// assignment at all.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusNoSolution:
		return "no solution"
	case StatusInfeasible:
		return "infeasible"
	}

	return "unknown"
}

type Options struct {
	// RelativeGap is the accepted relative distance between the returned
	// objective and the proven upper bound.
	RelativeGap float64
	// MaxNodes caps the search tree size, 0 means unlimited.
	MaxNodes int
}

type Solution struct {
	Status    Status
	Objective float64
	// Values holds one 0/1 value per model variable, indexed by
	// Var.Index(). Nil unless Status is Optimal or Feasible.
	Values []float64

	Nodes int
	Gap   float64
}

// Progress is a point-in-time view of a running solve, published on the
// engine's progress stream for monitoring.
type Progress struct {
	Incumbent float64 `json:"incumbent"`
	Bound     float64 `json:"bound"`
	Gap       float64 `json:"gap"`
	Nodes     int     `json:"nodes"`
}

type Engine interface {
	Solve(ctx context.Context, m *milp.Model, opts Options) (*Solution, error)
}
