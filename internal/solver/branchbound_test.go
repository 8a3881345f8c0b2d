package solver

import (
	"context"
	"math"
	"testing"

	"github.com/streamopt/cacheplan/internal/milp"
)

func knapsackModel(t *testing.T) *milp.Model {
	t.Helper()

	m := milp.NewModel()

	values := []float64{6, 10, 12}
	weights := []float64{1, 2, 3}

	var weight milp.LinExpr
	for i := range values {
		v, err := m.AddBinary(string(rune('x' + i)))
		if err != nil {
			t.Fatalf("could not add variable: %v", err)
		}
		m.AddObjTerm(v, values[i])
		weight.Add(weights[i], v)
	}

	if err := m.AddConstr("weight", weight, milp.LessEq, 5); err != nil {
		t.Fatalf("could not add constraint: %v", err)
	}

	return m
}

func TestBranchBoundKnapsack(t *testing.T) {
	m := knapsackModel(t)

	solution, err := NewBranchBound(nil).Solve(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if solution.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %s", solution.Status)
	}
	if math.Abs(solution.Objective-22) > 1e-6 {
		t.Fatalf("expected objective 22, got %g", solution.Objective)
	}

	want := []float64{0, 1, 1}
	for i, value := range solution.Values {
		if math.Abs(value-want[i]) > 1e-6 {
			t.Fatalf("expected values %v, got %v", want, solution.Values)
		}
	}
}

func TestBranchBoundGapTolerance(t *testing.T) {
	m := knapsackModel(t)

	tight, err := NewBranchBound(nil).Solve(context.Background(), m, Options{RelativeGap: 0.005})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	loose, err := NewBranchBound(nil).Solve(context.Background(), m, Options{RelativeGap: 0.5})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if tight.Status != StatusOptimal || loose.Status != StatusOptimal {
		t.Fatalf("expected optimal from both solves, got %s and %s", tight.Status, loose.Status)
	}

	// Objectives of two solves must agree within the looser gap.
	diff := math.Abs(tight.Objective-loose.Objective) / math.Max(1, tight.Objective)
	if diff > 0.5 {
		t.Fatalf("objectives disagree beyond the gap: %g vs %g", tight.Objective, loose.Objective)
	}
}

func TestBranchBoundInfeasible(t *testing.T) {
	m := milp.NewModel()
	x, err := m.AddBinary("x")
	if err != nil {
		t.Fatalf("could not add variable: %v", err)
	}

	var force milp.LinExpr
	force.Add(1, x)
	if err := m.AddConstr("force_on", force, milp.Equal, 1); err != nil {
		t.Fatalf("could not add constraint: %v", err)
	}

	var forbid milp.LinExpr
	forbid.Add(1, x)
	if err := m.AddConstr("force_off", forbid, milp.LessEq, 0); err != nil {
		t.Fatalf("could not add constraint: %v", err)
	}

	solution, err := NewBranchBound(nil).Solve(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if solution.Status != StatusInfeasible {
		t.Fatalf("expected infeasible, got %s", solution.Status)
	}
}

func TestBranchBoundNodeLimit(t *testing.T) {
	m := knapsackModel(t)

	solution, err := NewBranchBound(nil).Solve(context.Background(), m, Options{MaxNodes: 1})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	// The all-zero seed keeps the search feasible even when it stops
	// after the first node.
	if solution.Status != StatusFeasible {
		t.Fatalf("expected feasible, got %s", solution.Status)
	}
	if solution.Gap <= 0 {
		t.Fatalf("expected an open gap, got %g", solution.Gap)
	}
	if solution.Nodes != 1 {
		t.Fatalf("expected 1 explored node, got %d", solution.Nodes)
	}
}

func TestBranchBoundEmptyModel(t *testing.T) {
	solution, err := NewBranchBound(nil).Solve(context.Background(), milp.NewModel(), Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if solution.Status != StatusOptimal || solution.Objective != 0 {
		t.Fatalf("expected trivial optimum, got %s with objective %g", solution.Status, solution.Objective)
	}
}

func TestBranchBoundCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewBranchBound(nil).Solve(ctx, knapsackModel(t), Options{}); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestBranchBoundPublishesProgress(t *testing.T) {
	progress := make(chan Progress, 64)

	solution, err := NewBranchBound(progress).Solve(context.Background(), knapsackModel(t), Options{})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	select {
	case p := <-progress:
		if p.Nodes < 1 {
			t.Fatalf("expected at least one explored node in progress, got %d", p.Nodes)
		}
	default:
		t.Fatal("expected at least one progress snapshot")
	}

	if solution.Status != StatusOptimal {
		t.Fatalf("expected optimal, got %s", solution.Status)
	}
}
