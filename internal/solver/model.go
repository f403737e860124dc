// Package solver provides a small constraint model over bounded integer and
// boolean variables, and a time-boxed search that minimizes a linear objective.
package solver

import (
	"errors"
	"fmt"
	"math"
)

// NoLower and NoUpper mark an unbounded side of a linear constraint.
const (
	NoLower int64 = math.MinInt64
	NoUpper int64 = math.MaxInt64
)

// ErrInvalidModel is returned when a model references unknown variables or has empty domains.
var ErrInvalidModel = errors.New("invalid model")

// VarID indexes a variable inside a Model.
type VarID int

// Lit returns the positive literal of a boolean variable.
func (v VarID) Lit() Literal { return Literal{Var: v} }

// Not returns the negated literal of a boolean variable.
func (v VarID) Not() Literal { return Literal{Var: v, Negated: true} }

// Variable is a bounded integer variable. Boolean variables have domain [0, 1].
type Variable struct {
	Name string
	Min  int64
	Max  int64
	Bool bool
}

// Literal is a boolean variable or its negation.
type Literal struct {
	Var     VarID
	Negated bool
}

// Term is Coef * Var.
type Term struct {
	Var  VarID
	Coef int64
}

// LinearExpr is a sum of terms plus a constant offset.
type LinearExpr struct {
	Terms  []Term
	Offset int64
}

// Add appends coef*v to the expression.
func (e *LinearExpr) Add(v VarID, coef int64) {
	if coef == 0 {
		return
	}
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

// Constraint requires Lower <= Expr <= Upper whenever every enforcement literal is true.
type Constraint struct {
	Name        string
	Expr        LinearExpr
	Lower       int64
	Upper       int64
	Enforcement []Literal
}

// OnlyEnforceIf makes the constraint conditional on all given literals being true.
func (c *Constraint) OnlyEnforceIf(lits ...Literal) *Constraint {
	c.Enforcement = append(c.Enforcement, lits...)
	return c
}

// Model is a set of variables, linear constraints and an optional objective to minimize.
type Model struct {
	vars         []Variable
	constraints  []*Constraint
	objective    LinearExpr
	hasObjective bool
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewIntVar adds an integer variable with domain [min, max].
func (m *Model) NewIntVar(min, max int64, name string) VarID {
	m.vars = append(m.vars, Variable{Name: name, Min: min, Max: max})
	return VarID(len(m.vars) - 1)
}

// NewBoolVar adds a boolean variable.
func (m *Model) NewBoolVar(name string) VarID {
	m.vars = append(m.vars, Variable{Name: name, Min: 0, Max: 1, Bool: true})
	return VarID(len(m.vars) - 1)
}

// AddLinear adds lower <= expr <= upper. Use NoLower / NoUpper for one-sided constraints.
func (m *Model) AddLinear(expr LinearExpr, lower, upper int64, name string) *Constraint {
	c := &Constraint{Name: name, Expr: expr, Lower: lower, Upper: upper}
	m.constraints = append(m.constraints, c)
	return c
}

// AddLessOrEqual adds expr <= upper.
func (m *Model) AddLessOrEqual(expr LinearExpr, upper int64, name string) *Constraint {
	return m.AddLinear(expr, NoLower, upper, name)
}

// AddGreaterOrEqual adds expr >= lower.
func (m *Model) AddGreaterOrEqual(expr LinearExpr, lower int64, name string) *Constraint {
	return m.AddLinear(expr, lower, NoUpper, name)
}

// Minimize sets the objective.
func (m *Model) Minimize(expr LinearExpr) {
	m.objective = expr
	m.hasObjective = true
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Variable returns the declaration of v.
func (m *Model) Variable(v VarID) Variable { return m.vars[v] }

// Objective returns the objective expression and whether one was set.
func (m *Model) Objective() (LinearExpr, bool) { return m.objective, m.hasObjective }

// Evaluate computes expr for a full assignment.
func (m *Model) Evaluate(expr LinearExpr, values []int64) int64 {
	sum := expr.Offset
	for _, t := range expr.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Satisfied reports whether a full assignment meets every constraint and domain.
func (m *Model) Satisfied(values []int64) bool {
	if len(values) != len(m.vars) {
		return false
	}
	for i, v := range m.vars {
		if values[i] < v.Min || values[i] > v.Max {
			return false
		}
	}
	for _, c := range m.constraints {
		if !enforced(c, values) {
			continue
		}
		act := m.Evaluate(c.Expr, values)
		if act < c.Lower || act > c.Upper {
			return false
		}
	}
	return true
}

func enforced(c *Constraint, values []int64) bool {
	for _, lit := range c.Enforcement {
		isTrue := values[lit.Var] == 1
		if lit.Negated {
			isTrue = !isTrue
		}
		if !isTrue {
			return false
		}
	}
	return true
}

// Validate checks variable references, domains and enforcement literals.
func (m *Model) Validate() error {
	n := VarID(len(m.vars))
	for _, v := range m.vars {
		if v.Min > v.Max {
			return fmt.Errorf("%w: variable %q has empty domain [%d, %d]", ErrInvalidModel, v.Name, v.Min, v.Max)
		}
	}
	checkExpr := func(owner string, e LinearExpr) error {
		for _, t := range e.Terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("%w: %s references unknown variable %d", ErrInvalidModel, owner, t.Var)
			}
		}
		return nil
	}
	for _, c := range m.constraints {
		if err := checkExpr("constraint "+c.Name, c.Expr); err != nil {
			return err
		}
		for _, lit := range c.Enforcement {
			if lit.Var < 0 || lit.Var >= n || !m.vars[lit.Var].Bool {
				return fmt.Errorf("%w: constraint %s is enforced by a non-boolean literal", ErrInvalidModel, c.Name)
			}
		}
	}
	if m.hasObjective {
		if err := checkExpr("objective", m.objective); err != nil {
			return err
		}
	}
	return nil
}
