// Package milp holds a binary linear program: named boolean variables, a
// linear maximization objective and linear constraints. It is the contract
// between the model builder and whichever solving engine runs the search.
package milp

import "fmt"

type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	}

	return "?"
}

// Var is a handle to a boolean decision variable of one Model.
type Var struct {
	index int
}

func (v Var) Index() int {
	return v.index
}

type Term struct {
	Var  Var
	Coef float64
}

type LinExpr struct {
	terms []Term
}

func (e *LinExpr) Add(coef float64, v Var) {
	e.terms = append(e.terms, Term{Var: v, Coef: coef})
}

func (e *LinExpr) Terms() []Term {
	return e.terms
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// ModelConstructionError signals a violated building invariant, such as a
// duplicate variable name. It is a programming defect, not a data error.
type ModelConstructionError struct {
	Reason string
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("model construction: %s", e.Reason)
}

// Model is append-only: variables and constraints are registered once while
// building and only read afterwards.
type Model struct {
	names     []string
	index     map[string]int
	objective []float64

	constraints     []Constraint
	constraintNames map[string]bool
}

func NewModel() *Model {
	return &Model{
		index:           make(map[string]int),
		constraintNames: make(map[string]bool),
	}
}

// AddBinary registers a new boolean variable under a unique name.
func (m *Model) AddBinary(name string) (Var, error) {
	if _, ok := m.index[name]; ok {
		return Var{}, &ModelConstructionError{Reason: fmt.Sprintf("duplicate variable %q", name)}
	}

	v := Var{index: len(m.names)}
	m.index[name] = v.index
	m.names = append(m.names, name)
	m.objective = append(m.objective, 0)

	return v, nil
}

// AddObjTerm adds coef to the objective coefficient of v. The objective is
// always maximized.
func (m *Model) AddObjTerm(v Var, coef float64) {
	m.objective[v.index] += coef
}

func (m *Model) AddConstr(name string, expr LinExpr, sense Sense, rhs float64) error {
	if m.constraintNames[name] {
		return &ModelConstructionError{Reason: fmt.Sprintf("duplicate constraint %q", name)}
	}

	m.constraintNames[name] = true
	m.constraints = append(m.constraints, Constraint{
		Name:  name,
		Terms: expr.terms,
		Sense: sense,
		RHS:   rhs,
	})

	return nil
}

func (m *Model) NumVars() int {
	return len(m.names)
}

func (m *Model) NumConstrs() int {
	return len(m.constraints)
}

func (m *Model) VarName(v Var) string {
	return m.names[v.index]
}

// ObjCoef returns the objective coefficient of v.
func (m *Model) ObjCoef(v Var) float64 {
	return m.objective[v.index]
}

// Objective returns the objective coefficients indexed by variable.
// Callers must not mutate the returned slice.
func (m *Model) Objective() []float64 {
	return m.objective
}

// Constraints returns the registered constraints in insertion order.
// Callers must not mutate the returned slice.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Eval computes the objective value of a full variable assignment.
func (m *Model) Eval(values []float64) float64 {
	var total float64
	for i, coef := range m.objective {
		total += coef * values[i]
	}

	return total
}

// Satisfies reports whether a full variable assignment meets every
// constraint, within tol.
func (m *Model) Satisfies(values []float64, tol float64) bool {
	for _, constraint := range m.constraints {
		var lhs float64
		for _, term := range constraint.Terms {
			lhs += term.Coef * values[term.Var.index]
		}

		switch constraint.Sense {
		case LessEq:
			if lhs > constraint.RHS+tol {
				return false
			}
		case GreaterEq:
			if lhs < constraint.RHS-tol {
				return false
			}
		case Equal:
			if lhs > constraint.RHS+tol || lhs < constraint.RHS-tol {
				return false
			}
		}
	}

	return true
}
