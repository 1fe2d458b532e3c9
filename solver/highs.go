/*
Copyright © 2026 Malte Hoffs

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package solver

import (
	"fmt"
	"math"

	"github.com/bartolsthoorn/gohighs/highs"

	"github.com/mhoffs/fluxsim/cbmodel"
)

type column struct {
	name  string
	lower float64
	upper float64
	kind  VarKind
}

type row struct {
	name  string
	terms []Term
	rel   Relation
	rhs   float64
}

// HighsBackend implements Backend on top of the HiGHS solver. It keeps a
// symbolic, name-indexed copy of the problem and materializes a highs.Model
// for each solve, so the numerical layer never holds state between calls.
//
// A HighsBackend is not safe for concurrent use.
type HighsBackend struct {
	logger Logger

	cols     []column
	colIndex map[string]int
	rows     []row
	rowIndex map[string]int

	pendingCols []column
	pendingRows []row
}

// New returns an empty backend. Use Build to initialize it from a model, or
// add variables and constraints directly.
func New(opts ...Option) (*HighsBackend, error) {
	b := &HighsBackend{
		logger:   noopLogger{},
		colIndex: make(map[string]int),
		rowIndex: make(map[string]int),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("applying backend option: %w", err)
		}
	}

	return b, nil
}

// Build implements Backend.
func (b *HighsBackend) Build(model *cbmodel.Model) error {
	b.cols = nil
	b.rows = nil
	b.pendingCols = nil
	b.pendingRows = nil
	b.colIndex = make(map[string]int)
	b.rowIndex = make(map[string]int)

	for _, r := range model.Reactions() {
		if err := b.AddVariable(r.ID, r.LowerBound, r.UpperBound, ContinuousVariable); err != nil {
			return err
		}
	}
	b.Update()

	for _, metID := range model.Metabolites() {
		var terms []Term
		for _, r := range model.Reactions() {
			if coeff, ok := r.Stoichiometry[metID]; ok && coeff != 0 {
				terms = append(terms, Term{Var: r.ID, Coef: coeff})
			}
		}
		if err := b.AddConstraint(metID, terms, Equal, 0); err != nil {
			return err
		}
	}
	b.Update()

	return nil
}

// AddVariable implements Backend.
func (b *HighsBackend) AddVariable(name string, lower, upper float64, kind VarKind) error {
	if b.hasVariable(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, name)
	}
	b.pendingCols = append(b.pendingCols, column{name: name, lower: lower, upper: upper, kind: kind})
	return nil
}

// AddConstraint implements Backend.
func (b *HighsBackend) AddConstraint(name string, terms []Term, rel Relation, rhs float64) error {
	if b.hasConstraint(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateConstraint, name)
	}
	for _, t := range terms {
		if !b.hasVariable(t.Var) {
			return fmt.Errorf("%w: %s (in constraint %s)", ErrUnknownVariable, t.Var, name)
		}
	}
	ts := make([]Term, len(terms))
	copy(ts, terms)
	b.pendingRows = append(b.pendingRows, row{name: name, terms: ts, rel: rel, rhs: rhs})
	return nil
}

// RemoveConstraint implements Backend.
func (b *HighsBackend) RemoveConstraint(name string) error {
	for i, r := range b.pendingRows {
		if r.name == name {
			b.pendingRows = append(b.pendingRows[:i], b.pendingRows[i+1:]...)
			return nil
		}
	}
	idx, ok := b.rowIndex[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConstraint, name)
	}
	b.rows = append(b.rows[:idx], b.rows[idx+1:]...)
	b.rowIndex = make(map[string]int, len(b.rows))
	for i, r := range b.rows {
		b.rowIndex[r.name] = i
	}
	return nil
}

// Update implements Backend.
func (b *HighsBackend) Update() {
	for _, c := range b.pendingCols {
		b.colIndex[c.name] = len(b.cols)
		b.cols = append(b.cols, c)
	}
	b.pendingCols = nil
	for _, r := range b.pendingRows {
		b.rowIndex[r.name] = len(b.rows)
		b.rows = append(b.rows, r)
	}
	b.pendingRows = nil
}

// SolveLP implements Backend.
func (b *HighsBackend) SolveLP(objective map[string]float64, dir Direction, opts ...SolveOption) (*Solution, error) {
	return b.solve(objective, nil, 0, dir, opts)
}

// SolveQP implements Backend.
func (b *HighsBackend) SolveQP(quadratic []QuadTerm, linear map[string]float64, offset float64, dir Direction, opts ...SolveOption) (*Solution, error) {
	return b.solve(linear, quadratic, offset, dir, opts)
}

func (b *HighsBackend) solve(linear map[string]float64, quadratic []QuadTerm, offset float64, dir Direction, opts []SolveOption) (*Solution, error) {
	b.Update()

	cfg := &solveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	m, err := b.materialize(linear, quadratic, offset, dir, cfg)
	if err != nil {
		return nil, err
	}

	kind := "LP"
	switch {
	case len(quadratic) > 0:
		kind = "QP"
	case b.hasBinaries():
		kind = "MIP"
	}
	b.logger.Print("solving ", kind, ": ", len(b.cols), " variables, ", len(b.rows), " constraints, ", dir)

	solveOpts := []highs.SolveOption{highs.WithOutput(false)}
	if cfg.timeLimit != nil {
		solveOpts = append(solveOpts, highs.WithTimeLimit(*cfg.timeLimit))
	}

	raw, err := m.Solve(solveOpts...)
	if err != nil {
		return nil, fmt.Errorf("highs solve: %w", err)
	}

	sol := &Solution{
		Status:    statusFromHighs(raw.Status),
		Objective: raw.Objective,
	}
	b.logger.Print("solve finished: ", sol.Status)

	if len(raw.ColValues) == len(b.cols) {
		sol.Values = make(map[string]float64, len(b.cols))
		for i, c := range b.cols {
			sol.Values[c.name] = raw.ColValues[i]
		}
	}
	if cfg.shadowPrices && len(raw.RowDuals) == len(b.rows) {
		sol.ShadowPrices = make(map[string]float64, len(b.rows))
		for i, r := range b.rows {
			sol.ShadowPrices[r.name] = raw.RowDuals[i]
		}
	}
	if cfg.reducedCosts && len(raw.ColDuals) == len(b.cols) {
		sol.ReducedCosts = make(map[string]float64, len(b.cols))
		for i, c := range b.cols {
			sol.ReducedCosts[c.name] = raw.ColDuals[i]
		}
	}

	return sol, nil
}

// materialize converts the symbolic problem into a highs.Model, applying
// per-solve bound overrides and the objective.
func (b *HighsBackend) materialize(linear map[string]float64, quadratic []QuadTerm, offset float64, dir Direction, cfg *solveConfig) (*highs.Model, error) {
	n := len(b.cols)

	colCosts := make([]float64, n)
	for name, coeff := range linear {
		idx, ok := b.colIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (in objective)", ErrUnknownVariable, name)
		}
		colCosts[idx] = coeff
	}

	colLower := make([]float64, n)
	colUpper := make([]float64, n)
	for i, c := range b.cols {
		colLower[i] = c.lower
		colUpper[i] = c.upper
	}
	for name, bounds := range cfg.bounds {
		idx, ok := b.colIndex[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (in bounds override)", ErrUnknownVariable, name)
		}
		colLower[idx] = bounds.Lower
		colUpper[idx] = bounds.Upper
	}

	m := &highs.Model{
		Maximize: dir == Maximize,
		Offset:   offset,
		ColCosts: colCosts,
		ColLower: colLower,
		ColUpper: colUpper,
	}

	if b.hasBinaries() {
		m.VarTypes = make([]highs.VariableType, n)
		for i, c := range b.cols {
			if c.kind == BinaryVariable {
				m.VarTypes[i] = highs.Integer
			}
		}
	}

	for rowIdx, r := range b.rows {
		lower, upper := math.Inf(-1), math.Inf(1)
		switch r.rel {
		case LessEqual:
			upper = r.rhs
		case GreaterEqual:
			lower = r.rhs
		case Equal:
			lower, upper = r.rhs, r.rhs
		}
		m.RowLower = append(m.RowLower, lower)
		m.RowUpper = append(m.RowUpper, upper)
		for _, t := range r.terms {
			if t.Coef == 0 {
				continue
			}
			m.ConstMatrix = append(m.ConstMatrix, highs.Nonzero{
				Row: rowIdx,
				Col: b.colIndex[t.Var],
				Val: t.Coef,
			})
		}
	}

	// HiGHS reads the Hessian as 0.5 x'Hx, so a plain c*x_i^2 term needs a
	// diagonal entry of 2c, while off-diagonal entries carry c directly.
	for _, q := range quadratic {
		i, ok := b.colIndex[q.V1]
		if !ok {
			return nil, fmt.Errorf("%w: %s (in quadratic objective)", ErrUnknownVariable, q.V1)
		}
		j, ok := b.colIndex[q.V2]
		if !ok {
			return nil, fmt.Errorf("%w: %s (in quadratic objective)", ErrUnknownVariable, q.V2)
		}
		if i > j {
			i, j = j, i
		}
		val := q.Coef
		if i == j {
			val *= 2
		}
		m.Hessian = append(m.Hessian, highs.Nonzero{Row: i, Col: j, Val: val})
	}

	return m, nil
}

func (b *HighsBackend) hasVariable(name string) bool {
	if _, ok := b.colIndex[name]; ok {
		return true
	}
	for _, c := range b.pendingCols {
		if c.name == name {
			return true
		}
	}
	return false
}

func (b *HighsBackend) hasConstraint(name string) bool {
	if _, ok := b.rowIndex[name]; ok {
		return true
	}
	for _, r := range b.pendingRows {
		if r.name == name {
			return true
		}
	}
	return false
}

func (b *HighsBackend) hasBinaries() bool {
	for _, c := range b.cols {
		if c.kind == BinaryVariable {
			return true
		}
	}
	return false
}

func statusFromHighs(s highs.ModelStatus) Status {
	switch s {
	case highs.ModelStatusOptimal:
		return StatusOptimal
	case highs.ModelStatusInfeasible:
		return StatusInfeasible
	case highs.ModelStatusUnbounded:
		return StatusUnbounded
	case highs.ModelStatusUnboundedOrInfeasible:
		return StatusInfeasibleOrUnbounded
	default:
		if s.HasSolution() {
			return StatusSuboptimal
		}
		return StatusUnknown
	}
}
