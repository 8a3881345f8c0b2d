package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/streamopt/cacheplan/internal/milp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const intTol = 1e-6

// BranchBound solves binary programs by best-bound branch and bound over
// LP relaxations. Each node fixes a subset of variables to 0 or 1; the
// relaxation of the rest gives an upper bound that drives pruning.
type BranchBound struct {
	// Progress, when set, receives point-in-time search snapshots.
	// Sends never block, a slow consumer only misses updates.
	Progress chan<- Progress
}

func NewBranchBound(progress chan<- Progress) *BranchBound {
	return &BranchBound{Progress: progress}
}

type node struct {
	fixed map[int]float64
	bound float64
	x     []float64
}

func (bb *BranchBound) Solve(ctx context.Context, m *milp.Model, opts Options) (*Solution, error) {
	n := m.NumVars()
	if n == 0 {
		return &Solution{Status: StatusOptimal, Values: []float64{}}, nil
	}

	var incumbent []float64
	incObj := math.Inf(-1)

	// Seed with the all-zero assignment when it is feasible, which for
	// placement models it always is.
	zero := make([]float64, n)
	if m.Satisfies(zero, intTol) {
		incumbent = zero
		incObj = 0
	}

	rootBound, rootX, err := bb.relax(m, nil)
	if errors.Is(err, lp.ErrInfeasible) {
		return &Solution{Status: StatusInfeasible}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("root relaxation failed: %w", err)
	}

	frontier := binaryheap.NewWith(func(a, b interface{}) int {
		boundA := a.(*node).bound
		boundB := b.(*node).bound

		if boundA > boundB {
			return -1
		}
		if boundA < boundB {
			return 1
		}
		return 0
	})
	frontier.Push(&node{bound: rootBound, x: rootX})

	nodes := 0
	bestBound := rootBound
	limitHit := false
	proven := false

	for !frontier.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.MaxNodes > 0 && nodes >= opts.MaxNodes {
			limitHit = true
			break
		}

		item, _ := frontier.Pop()
		current := item.(*node)
		nodes += 1

		// Best-first order makes the popped bound the global one.
		bestBound = current.bound
		bb.publish(Progress{
			Incumbent: math.Max(incObj, 0),
			Bound:     bestBound,
			Gap:       relGap(incObj, bestBound),
			Nodes:     nodes,
		})

		if incumbent != nil {
			if relGap(incObj, bestBound) <= opts.RelativeGap {
				proven = true
				break
			}
			if current.bound <= incObj+intTol {
				continue
			}
		}

		branchVar := mostFractional(current.x)
		if branchVar < 0 {
			// The relaxation came out integral, so it is a feasible
			// assignment in its own right.
			values := roundValues(current.x)
			if obj := m.Eval(values); obj > incObj {
				incObj = obj
				incumbent = values
			}
			continue
		}

		for _, value := range []float64{1, 0} {
			childFixed := make(map[int]float64, len(current.fixed)+1)
			for i, v := range current.fixed {
				childFixed[i] = v
			}
			childFixed[branchVar] = value

			bound, x, err := bb.relax(m, childFixed)
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("node relaxation failed: %w", err)
			}
			if incumbent != nil && bound <= incObj+intTol {
				continue
			}

			frontier.Push(&node{fixed: childFixed, bound: bound, x: x})
		}
	}

	log.Debug().Msgf(
		"branch and bound finished after %d nodes, best bound %g",
		nodes, bestBound,
	)

	if incumbent == nil {
		if limitHit {
			return &Solution{Status: StatusNoSolution, Nodes: nodes}, nil
		}
		// The tree is exhausted and no integral assignment exists.
		return &Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	}

	solution := &Solution{
		Objective: incObj,
		Values:    incumbent,
		Nodes:     nodes,
	}
	if limitHit && !proven {
		solution.Status = StatusFeasible
		solution.Gap = relGap(incObj, bestBound)
	} else {
		// Either the gap tolerance was met or the frontier ran dry,
		// which proves the incumbent within the requested gap.
		solution.Status = StatusOptimal
		if proven {
			solution.Gap = relGap(incObj, bestBound)
		}
	}

	return solution, nil
}

func (bb *BranchBound) publish(p Progress) {
	if bb.Progress == nil {
		return
	}

	select {
	case bb.Progress <- p:
	default:
	}
}

// relax solves the LP relaxation of m with the given variables fixed and
// the rest free in [0, 1]. It returns the relaxed objective value and the
// relaxed assignment.
func (bb *BranchBound) relax(m *milp.Model, fixed map[int]float64) (float64, []float64, error) {
	n := m.NumVars()
	constraints := m.Constraints()

	// Standard form: every inequality row gets its own slack column,
	// every variable gets one row, either an upper bound x+s=1 or a
	// fixing x=v.
	numSlacks := n - len(fixed)
	for _, constraint := range constraints {
		if constraint.Sense != milp.Equal {
			numSlacks += 1
		}
	}

	numRows := len(constraints) + n
	cols := n + numSlacks

	a := mat.NewDense(numRows, cols, nil)
	b := make([]float64, numRows)

	row, slack := 0, 0
	for _, constraint := range constraints {
		sign := 1.0
		if constraint.Sense == milp.GreaterEq {
			sign = -1
		}

		for _, term := range constraint.Terms {
			col := term.Var.Index()
			a.Set(row, col, a.At(row, col)+sign*term.Coef)
		}
		b[row] = sign * constraint.RHS

		if constraint.Sense != milp.Equal {
			a.Set(row, n+slack, 1)
			slack += 1
		}
		row += 1
	}

	for i := 0; i < n; i++ {
		a.Set(row, i, 1)
		if value, ok := fixed[i]; ok {
			b[row] = value
		} else {
			b[row] = 1
			a.Set(row, n+slack, 1)
			slack += 1
		}
		row += 1
	}

	objective := make([]float64, cols)
	for i, coef := range m.Objective() {
		objective[i] = -coef
	}

	// A zero tolerance makes Simplex use its default.
	opt, x, err := lp.Simplex(objective, a, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}

	return -opt, x[:n], nil
}

// mostFractional returns the index of the variable farthest from an
// integer value, or -1 when the assignment is integral.
func mostFractional(x []float64) int {
	best := -1
	bestDist := intTol

	for i, value := range x {
		dist := math.Min(value, 1-value)
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}

	return best
}

func roundValues(x []float64) []float64 {
	values := make([]float64, len(x))
	for i, value := range x {
		values[i] = math.Round(value)
	}

	return values
}

// relGap measures how far bound is above incumbent, relative to the
// incumbent. The denominator is floored at 1 so the always-feasible empty
// placement, objective zero, does not blow the ratio up.
func relGap(incumbent, bound float64) float64 {
	gap := (bound - incumbent) / math.Max(1, math.Abs(incumbent))
	if gap < 0 {
		return 0
	}

	return gap
}
