package solver

import (
	"time"
)

const (
	deadlineCheckInterval = 256
	maxPropagationPasses  = 64
)

// BacktrackingSolver is a depth-first branch-and-bound search with bounds
// propagation over the linear constraints. It explores variables smallest
// domain first and values in increasing order, so it is deterministic for a
// given model. It is meant for models with small bounded domains.
type BacktrackingSolver struct {
	clock func() time.Time
}

// NewBacktrackingSolver returns a solver using the wall clock for its deadline.
func NewBacktrackingSolver() *BacktrackingSolver {
	return &BacktrackingSolver{clock: time.Now}
}

type bounds struct {
	lo, hi int64
}

type trailEntry struct {
	v   int
	old bounds
}

// domains holds the current bounds of every variable. Each change is pushed
// on a trail so backtracking restores the parent node in place.
type domains struct {
	b     []bounds
	trail []trailEntry
}

func (d *domains) set(v int, nb bounds) {
	d.trail = append(d.trail, trailEntry{v: v, old: d.b[v]})
	d.b[v] = nb
}

func (d *domains) mark() int { return len(d.trail) }

func (d *domains) undo(to int) {
	for i := len(d.trail) - 1; i >= to; i-- {
		e := d.trail[i]
		d.b[e.v] = e.old
	}
	d.trail = d.trail[:to]
}

type search struct {
	m           *Model
	objective   LinearExpr
	minimize    bool
	objBound    *Constraint
	clock       func() time.Time
	deadline    time.Time
	maxBranches int64

	branches int64
	stopped  bool
	found    bool
	best     []int64
	bestObj  int64
	doms     *domains
}

// Solve runs the search until it proves optimality or infeasibility, or until
// the time or branch budget in p is spent.
func (s *BacktrackingSolver) Solve(m *Model, p Parameters) (*Response, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	clock := s.clock
	if clock == nil {
		clock = time.Now
	}
	maxTime := p.MaxTime
	if maxTime <= 0 {
		maxTime = DefaultMaxTime
	}

	start := clock()
	st := &search{
		m:           m,
		clock:       clock,
		deadline:    start.Add(maxTime),
		maxBranches: p.MaxBranches,
	}
	st.objective, st.minimize = m.Objective()
	st.objBound = &Constraint{Name: "objective_bound", Expr: st.objective, Lower: NoLower, Upper: NoUpper}

	st.doms = &domains{b: make([]bounds, m.NumVars())}
	for i, v := range m.vars {
		st.doms.b[i] = bounds{lo: v.Min, hi: v.Max}
	}
	if st.propagate(st.doms) {
		st.doms.trail = st.doms.trail[:0]
		st.dfs()
	}

	resp := &Response{WallTime: clock().Sub(start), Branches: st.branches}
	switch {
	case st.found && !st.stopped:
		resp.Status = StatusOptimal
	case st.found:
		resp.Status = StatusFeasible
	case st.stopped:
		resp.Status = StatusNoSolutionFound
	default:
		resp.Status = StatusInfeasible
	}
	if st.found {
		resp.Values = st.best
		resp.ObjectiveValue = st.bestObj
	}
	return resp, nil
}

func (st *search) dfs() {
	if st.stopped {
		return
	}
	st.branches++
	if st.maxBranches > 0 && st.branches > st.maxBranches {
		st.stopped = true
		return
	}
	if st.branches%deadlineCheckInterval == 0 && !st.clock().Before(st.deadline) {
		st.stopped = true
		return
	}

	doms := st.doms
	v := pickVar(doms.b)
	if v < 0 {
		st.record(doms.b)
		return
	}

	lo, hi := doms.b[v].lo, doms.b[v].hi
	for val := lo; val <= hi; val++ {
		mark := doms.mark()
		doms.set(v, bounds{lo: val, hi: val})
		if st.propagate(doms) {
			st.dfs()
		}
		doms.undo(mark)
		if st.stopped || (st.found && !st.minimize) {
			return
		}
	}
}

// pickVar returns the unfixed variable with the smallest domain, or -1.
func pickVar(doms []bounds) int {
	best := -1
	var bestSize int64
	for i, d := range doms {
		size := d.hi - d.lo
		if size == 0 {
			continue
		}
		if best < 0 || size < bestSize {
			best, bestSize = i, size
		}
	}
	return best
}

func (st *search) record(doms []bounds) {
	values := make([]int64, len(doms))
	for i, d := range doms {
		values[i] = d.lo
	}
	if !st.m.Satisfied(values) {
		return
	}
	var obj int64
	if st.minimize {
		obj = st.m.Evaluate(st.objective, values)
	}
	if st.found && obj >= st.bestObj {
		return
	}
	st.found = true
	st.best = values
	st.bestObj = obj
	if st.minimize {
		st.objBound.Upper = obj - 1
	}
}

func (st *search) propagate(doms *domains) bool {
	for pass := 0; pass < maxPropagationPasses; pass++ {
		changed := false
		for _, c := range st.m.constraints {
			ok, ch := propagateConstraint(c, doms)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if st.found && st.minimize {
			ok, ch := propagateConstraint(st.objBound, doms)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if !changed {
			return true
		}
	}
	return true
}

// propagateConstraint tightens variable bounds implied by c. It returns false
// when c can no longer be satisfied under doms.
func propagateConstraint(c *Constraint, doms *domains) (ok bool, changed bool) {
	unfixed, nUnfixed := -1, 0
	for i, lit := range c.Enforcement {
		d := doms.b[lit.Var]
		if d.lo != d.hi {
			unfixed, nUnfixed = i, nUnfixed+1
			continue
		}
		val := d.lo == 1
		if lit.Negated {
			val = !val
		}
		if !val {
			return true, false
		}
	}

	minAct, maxAct := activity(c.Expr, doms.b)
	violated := minAct > c.Upper || maxAct < c.Lower

	if nUnfixed > 0 {
		if nUnfixed == 1 && violated {
			// The constraint cannot hold, so its last open enforcement literal must be false.
			lit := c.Enforcement[unfixed]
			if lit.Negated {
				doms.set(int(lit.Var), bounds{lo: 1, hi: 1})
			} else {
				doms.set(int(lit.Var), bounds{lo: 0, hi: 0})
			}
			return true, true
		}
		return true, false
	}
	if violated {
		return false, false
	}

	for _, t := range c.Expr.Terms {
		d := doms.b[t.Var]
		if d.lo == d.hi || t.Coef == 0 {
			continue
		}
		tmin, tmax := termRange(t, d)
		if c.Upper != NoUpper {
			slack := c.Upper - (minAct - tmin)
			if t.Coef > 0 {
				if hi := floorDiv(slack, t.Coef); hi < d.hi {
					d.hi, changed = hi, true
				}
			} else if lo := ceilDiv(slack, t.Coef); lo > d.lo {
				d.lo, changed = lo, true
			}
		}
		if c.Lower != NoLower {
			need := c.Lower - (maxAct - tmax)
			if t.Coef > 0 {
				if lo := ceilDiv(need, t.Coef); lo > d.lo {
					d.lo, changed = lo, true
				}
			} else if hi := floorDiv(need, t.Coef); hi < d.hi {
				d.hi, changed = hi, true
			}
		}
		if d.lo > d.hi {
			return false, false
		}
		if d != doms.b[t.Var] {
			doms.set(int(t.Var), d)
		}
	}
	return true, changed
}

func activity(e LinearExpr, doms []bounds) (int64, int64) {
	lo, hi := e.Offset, e.Offset
	for _, t := range e.Terms {
		tmin, tmax := termRange(t, doms[t.Var])
		lo += tmin
		hi += tmax
	}
	return lo, hi
}

func termRange(t Term, d bounds) (int64, int64) {
	if t.Coef >= 0 {
		return t.Coef * d.lo, t.Coef * d.hi
	}
	return t.Coef * d.hi, t.Coef * d.lo
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
