// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package smooth provides Gaussian smoothing of time series along the time axis.

The kernel extends to Truncate standard deviations on either side and is
normalized to unit sum.  The signal is extended
beyond its edges by reflection about the edge (d c b a | a b c d | d c b a),
so that smoothing a constant signal returns the same constant.
*/
package smooth

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Truncate is the number of standard deviations at which the kernel is cut off.
const Truncate = 4.0

// Kernel returns the normalized Gaussian weights for given sigma,
// of length 2*r+1 where r = int(Truncate*sigma + 0.5).
// Returns a single unit weight for sigma <= 0.
func Kernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	r := int(Truncate*sigma + 0.5)
	wts := make([]float64, 2*r+1)
	s2 := -0.5 / (sigma * sigma)
	for i := range wts {
		x := float64(i - r)
		wts[i] = math.Exp(s2 * x * x)
	}
	floats.Scale(1/floats.Sum(wts), wts)
	return wts
}

// reflect maps index i into [0, n) by mirror reflection about the edges,
// repeating with period 2n for indexes far outside the range.
func reflect(i, n int) int {
	p := 2 * n
	i %= p
	if i < 0 {
		i += p
	}
	if i >= n {
		i = p - 1 - i
	}
	return i
}

// Gaussian1D returns the Gaussian smoothed version of x with given sigma.
// x is not modified.
func Gaussian1D(x []float64, sigma float64) []float64 {
	out := make([]float64, len(x))
	gaussianTo(out, x, Kernel(sigma))
	return out
}

func gaussianTo(dst, x, wts []float64) {
	n := len(x)
	r := len(wts) / 2
	for i := 0; i < n; i++ {
		var s float64
		for k, w := range wts {
			s += w * x[reflect(i+k-r, n)]
		}
		dst[i] = s
	}
}

// Columns smooths each column of m along its rows (time is the row axis),
// returning a new matrix of the same shape.
func Columns(m mat.Matrix, sigma float64) *mat.Dense {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(rows, cols, nil)
	wts := Kernel(sigma)
	col := make([]float64, rows)
	res := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(col, c, m)
		gaussianTo(res, col, wts)
		out.SetCol(c, res)
	}
	return out
}
