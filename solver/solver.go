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

// Package solver exposes the optimization backend consumed by the simulation
// layer: a stateful problem builder with named variables and constraints, and
// linear, quadratic and mixed-integer solves delegated to HiGHS.
//
// Variables and constraints added through the builder are staged until the
// next Update (or solve, which commits implicitly). Problems are materialized
// from scratch for every solve, so removing a constraint and solving again is
// cheap and never leaves stale state in the numerical layer.
package solver

import (
	"errors"

	"github.com/mhoffs/fluxsim/cbmodel"
)

var (
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrDuplicateVariable   = errors.New("duplicate variable")
	ErrUnknownConstraint   = errors.New("unknown constraint")
	ErrDuplicateConstraint = errors.New("duplicate constraint")
)

// Direction is the sense of an optimization.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return "unknown"
	}
}

// Relation is the sense of a linear constraint.
type Relation int

const (
	LessEqual Relation = iota
	GreaterEqual
	Equal
)

// String returns a human-readable representation of the relation.
func (r Relation) String() string {
	switch r {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// VarKind distinguishes continuous from binary decision variables.
type VarKind int

const (
	ContinuousVariable VarKind = iota
	BinaryVariable
)

// Term is one linear summand: Coef times the variable named Var.
type Term struct {
	Var  string
	Coef float64
}

// QuadTerm is one quadratic summand: Coef times V1 times V2.
type QuadTerm struct {
	V1   string
	V2   string
	Coef float64
}

// Bounds is a (lower, upper) pair used to override variable bounds for a
// single solve.
type Bounds struct {
	Lower float64
	Upper float64
}

// Backend is the problem-builder contract consumed by the simulation layer.
// Implementations are not safe for concurrent use.
type Backend interface {
	// Build initializes the problem from a model: one continuous variable per
	// reaction with the reaction's bounds, and one steady-state balance
	// equality per metabolite. Any previously built state is discarded.
	Build(model *cbmodel.Model) error

	// AddVariable stages a new named variable.
	AddVariable(name string, lower, upper float64, kind VarKind) error

	// AddConstraint stages a new named linear constraint over existing (or
	// staged) variables.
	AddConstraint(name string, terms []Term, rel Relation, rhs float64) error

	// RemoveConstraint removes a staged or committed constraint.
	RemoveConstraint(name string) error

	// Update commits all staged additions.
	Update()

	// SolveLP commits staged additions and solves with a linear objective.
	// Infeasibility and unboundedness are reported through the Solution
	// status, not as errors.
	SolveLP(objective map[string]float64, dir Direction, opts ...SolveOption) (*Solution, error)

	// SolveQP commits staged additions and solves with a quadratic objective
	// of the form sum(quadratic) + sum(linear) + offset.
	SolveQP(quadratic []QuadTerm, linear map[string]float64, offset float64, dir Direction, opts ...SolveOption) (*Solution, error)
}
