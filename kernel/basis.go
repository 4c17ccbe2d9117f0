// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Basis summarizes the kernel's basis functions: each row of K is rolled so
// that its diagonal element lands in the center column, which aligns the
// response to an impulse at every time step on a common relative time axis.
type Basis struct {

	// row-shifted kernel, steps x steps
	Shifted *mat.Dense

	// mean over rows of Shifted
	Mean []float64

	// population variance over rows of Shifted
	Var []float64

	// diagonal of K
	Diag []float64
}

// NewBasis computes the basis summary of the square kernel k.
func NewBasis(k mat.Matrix) *Basis {
	n, _ := k.Dims()
	bs := &Basis{Shifted: mat.NewDense(n, n, nil), Mean: make([]float64, n), Var: make([]float64, n), Diag: make([]float64, n)}
	row := make([]float64, n)
	for j := 0; j < n; j++ {
		mat.Row(row, j, k)
		shift := n/2 - j
		for i, v := range row {
			bs.Shifted.Set(j, mod(i+shift, n), v)
		}
		bs.Diag[j] = k.At(j, j)
	}
	col := make([]float64, n)
	for c := 0; c < n; c++ {
		mat.Col(col, c, bs.Shifted)
		bs.Mean[c], bs.Var[c] = stat.PopMeanVariance(col, nil)
	}
	return bs
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Dimensionality returns the participation ratio (sum |l|)^2 / sum l^2 of
// the eigenvalues l of the channel covariance of signal s (channels x steps),
// a measure of how many dimensions the signal effectively occupies.
// Returns 0 for a signal with no variance.
func Dimensionality(s mat.Matrix) (float64, error) {
	ch, steps := s.Dims()
	if steps < 2 {
		return 0, fmt.Errorf("%w: dimensionality needs at least 2 steps, have %d", ErrConfig, steps)
	}
	cov := mat.NewSymDense(ch, nil)
	stat.CovarianceMatrix(cov, s.T(), nil)
	var es mat.EigenSym
	if ok := es.Factorize(cov, false); !ok {
		return 0, &NumericError{Step: "covariance eigenvalues", Err: ErrSingular}
	}
	var sum, sumsq float64
	for _, l := range es.Values(nil) {
		sum += math.Abs(l)
		sumsq += l * l
	}
	if sumsq == 0 {
		return 0, nil
	}
	return sum * sum / sumsq, nil
}
