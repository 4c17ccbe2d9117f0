// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smooth

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-7

func TestGaussian1D(t *testing.T) {
	// reference values from gaussian_filter1d in reflect mode
	x := []float64{1, 2, 3, 4, 5}
	cors := map[float64][]float64{
		1: {1.42704095, 2.06782203, 3, 3.93217797, 4.57295905},
		4: {2.91948343, 2.95023502, 3, 3.04976498, 3.08051657},
	}
	for sig, cor := range cors {
		y := Gaussian1D(x, sig)
		for i := range y {
			dif := math.Abs(y[i] - cor[i])
			if dif > difTol {
				t.Errorf("sigma: %v, idx: %v, y: %v, cor y: %v, dif: %v\n", sig, i, y[i], cor[i], dif)
			}
		}
	}
	if x[0] != 1 || x[4] != 5 {
		t.Errorf("input was modified: %v\n", x)
	}
}

func TestKernel(t *testing.T) {
	wts := Kernel(10)
	if len(wts) != 81 {
		t.Errorf("kernel len: %v, expected 81\n", len(wts))
	}
	if dif := math.Abs(floats.Sum(wts) - 1); dif > difTol {
		t.Errorf("kernel sum dif: %v\n", dif)
	}
	for i := range wts {
		if wts[i] != wts[len(wts)-1-i] {
			t.Errorf("kernel not symmetric at: %v\n", i)
		}
	}
	if k := Kernel(0); len(k) != 1 || k[0] != 1 {
		t.Errorf("zero sigma kernel: %v\n", k)
	}
}

func TestConstantAndMass(t *testing.T) {
	cn := make([]float64, 50)
	for i := range cn {
		cn[i] = 2.5
	}
	for i, v := range Gaussian1D(cn, 3) {
		if math.Abs(v-2.5) > difTol {
			t.Errorf("constant not preserved at %v: %v\n", i, v)
		}
	}
	imp := make([]float64, 101)
	imp[50] = 1
	y := Gaussian1D(imp, 5)
	if dif := math.Abs(floats.Sum(y) - 1); dif > difTol {
		t.Errorf("impulse mass not preserved, dif: %v\n", dif)
	}
	if floats.MaxIdx(y) != 50 {
		t.Errorf("impulse peak moved to: %v\n", floats.MaxIdx(y))
	}
}

func TestReflectShortSignal(t *testing.T) {
	// kernel radius larger than the signal requires repeated reflection
	y := Gaussian1D([]float64{1, 1, 1}, 5)
	for i, v := range y {
		if math.Abs(v-1) > difTol {
			t.Errorf("short constant at %v: %v\n", i, v)
		}
	}
}

func TestColumns(t *testing.T) {
	m := mat.NewDense(20, 3, nil)
	m.Set(10, 1, 1)
	for r := 0; r < 20; r++ {
		m.Set(r, 2, 4)
	}
	s := Columns(m, 2)
	rows, cols := s.Dims()
	if rows != 20 || cols != 3 {
		t.Fatalf("dims: %v x %v\n", rows, cols)
	}
	col := mat.Col(nil, 1, s)
	ref := Gaussian1D(mat.Col(nil, 1, m), 2)
	for i := range col {
		if math.Abs(col[i]-ref[i]) > difTol {
			t.Errorf("col 1 row %v: %v vs %v\n", i, col[i], ref[i])
		}
		if s.At(i, 0) != 0 {
			t.Errorf("zero column changed at %v: %v\n", i, s.At(i, 0))
		}
		if math.Abs(s.At(i, 2)-4) > difTol {
			t.Errorf("constant column changed at %v: %v\n", i, s.At(i, 2))
		}
	}
}
