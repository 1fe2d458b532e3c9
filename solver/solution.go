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

// Status classifies the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusSuboptimal
	StatusInfeasible
	StatusUnbounded
	StatusInfeasibleOrUnbounded
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusInfeasibleOrUnbounded:
		return "infeasible or unbounded"
	default:
		return "unknown"
	}
}

// Solution is the result of one solve. It is created fresh per solve call and
// must not be mutated by callers.
//
// Values maps variable names to their primal values. ShadowPrices and
// ReducedCosts are only populated when requested and only available for pure
// linear problems. Callers must check Status before reading any value; on a
// non-optimal status the maps may be nil.
type Solution struct {
	Status       Status
	Objective    float64
	Values       map[string]float64
	ShadowPrices map[string]float64
	ReducedCosts map[string]float64
}

// IsOptimal reports whether the solve proved optimality.
func (s *Solution) IsOptimal() bool {
	return s.Status == StatusOptimal
}

// Value returns the primal value of the named variable, or 0 if the solution
// carries no value for it.
func (s *Solution) Value(name string) float64 {
	return s.Values[name]
}
