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

// Option configures a backend at construction time.
type Option func(*HighsBackend) error

// WithLogger routes the backend's solve messages to the given logger.
func WithLogger(logger Logger) Option {
	return func(b *HighsBackend) error {
		b.logger = logger

		return nil
	}
}

// SolveOption configures a single solve call.
type SolveOption func(*solveConfig)

type solveConfig struct {
	bounds       map[string]Bounds
	shadowPrices bool
	reducedCosts bool
	timeLimit    *float64
}

// WithBounds overrides variable bounds for this solve only. Every key must
// name an existing variable.
func WithBounds(bounds map[string]Bounds) SolveOption {
	return func(c *solveConfig) {
		c.bounds = bounds
	}
}

// WithShadowPrices requests constraint dual values (keyed by constraint name)
// in the solution. Only available for pure linear problems.
func WithShadowPrices() SolveOption {
	return func(c *solveConfig) {
		c.shadowPrices = true
	}
}

// WithReducedCosts requests variable dual values (keyed by variable name) in
// the solution. Only available for pure linear problems.
func WithReducedCosts() SolveOption {
	return func(c *solveConfig) {
		c.reducedCosts = true
	}
}

// WithTimeLimit bounds the solve duration, in seconds. The solve reports a
// suboptimal status when the limit is hit with a feasible point in hand.
func WithTimeLimit(seconds float64) SolveOption {
	return func(c *solveConfig) {
		c.timeLimit = &seconds
	}
}
