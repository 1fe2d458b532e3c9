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

package simulation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errSVDFailed = errors.New("SVD factorization failed")

// nullspaceBasis returns an orthonormal basis (as row vectors of length n) of
// the kernel of the m×n matrix given as dense rows. The numerical rank is
// determined from the singular values with the conventional
// eps*max(m,n)*sigma_max threshold.
func nullspaceBasis(rows [][]float64, n int) ([][]float64, error) {
	m := len(rows)
	if n == 0 {
		return nil, nil
	}
	if m == 0 {
		// no balance rows at all: the kernel is the whole space
		basis := make([][]float64, n)
		for i := range basis {
			basis[i] = make([]float64, n)
			basis[i][i] = 1
		}
		return basis, nil
	}

	a := mat.NewDense(m, n, nil)
	for i, row := range rows {
		a.SetRow(i, row)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFullV); !ok {
		return nil, errSVDFailed
	}

	sv := svd.Values(nil)
	eps := math.Pow(2, -52)
	tol := eps * float64(max(m, n)) * sv[0]

	rank := 0
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}

	var v mat.Dense
	svd.VTo(&v) // n×n, columns past the rank span the kernel

	basis := make([][]float64, 0, n-rank)
	for col := rank; col < n; col++ {
		vec := make([]float64, n)
		for i := 0; i < n; i++ {
			vec[i] = v.At(i, col)
		}
		basis = append(basis, vec)
	}
	return basis, nil
}
