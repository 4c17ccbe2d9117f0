// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package eval applies an estimated kernel to target time series and scores
the resulting readouts on held-out test trials.

Errors are measured after normalizing each signal by its own maximum, so
the score compares the shape of the reconstruction to the shape of the
target independent of their amplitudes.
*/
package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/resfit/kernel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShape is returned for length or dimension mismatches.
	ErrShape = errors.New("eval: shape mismatch")

	// ErrZeroMax is returned when a signal cannot be normalized by its maximum.
	ErrZeroMax = errors.New("eval: zero maximum")
)

// Result holds the predictions and scores for one target.
type Result struct {

	// name of the target, for reporting
	Name string

	// target time series
	Target []float64

	// reconstruction from the mean training response: K t
	TrainPred []float64

	// sensitivity of the reconstruction to trial variability: G t
	TrainDist []float64

	// readout weights over channels: W t
	Readout []float64

	// reconstruction on each test trial: Readout^T S_test
	TestPreds [][]float64

	// max-normalized mean squared error of each test reconstruction
	MSEs []float64
}

// MeanMSE returns the mean of the test MSEs.
func (rs *Result) MeanMSE() float64 {
	if len(rs.MSEs) == 0 {
		return math.NaN()
	}
	return stat.Mean(rs.MSEs, nil)
}

// Evaluate computes the predictions and scores of the kernel for target
// on the given test signals (channels x steps each).
func Evaluate(kn *kernel.Kernel, name string, target []float64, tests []*mat.Dense) (*Result, error) {
	steps := kn.Steps()
	if len(target) != steps {
		return nil, fmt.Errorf("%w: target %q has %d steps, kernel has %d", ErrShape, name, len(target), steps)
	}
	tv := mat.NewVecDense(steps, append([]float64(nil), target...))
	rs := &Result{Name: name, Target: tv.RawVector().Data}

	var err error
	if rs.TrainPred, err = mulVec(kn.K, tv, "train prediction K t"); err != nil {
		return nil, err
	}
	if rs.TrainDist, err = mulVec(kn.G, tv, "train distortion G t"); err != nil {
		return nil, err
	}
	if rs.Readout, err = mulVec(kn.W, tv, "readout weights W t"); err != nil {
		return nil, err
	}

	rv := mat.NewVecDense(len(rs.Readout), rs.Readout)
	for i, s := range tests {
		ch, st := s.Dims()
		if ch != kn.Channels() || st != steps {
			return nil, fmt.Errorf("%w: test signal %d is %dx%d, expected %dx%d", ErrShape, i, ch, st, kn.Channels(), steps)
		}
		pred, err := mulVec(s.T(), rv, fmt.Sprintf("test prediction %d", i))
		if err != nil {
			return nil, err
		}
		mse, err := MSE(target, pred)
		if err != nil {
			return nil, fmt.Errorf("test %d of target %q: %w", i, name, err)
		}
		rs.TestPreds = append(rs.TestPreds, pred)
		rs.MSEs = append(rs.MSEs, mse)
	}
	return rs, nil
}

// mulVec returns m v, failing with a kernel.NumericError naming step if
// the result is not finite.
func mulVec(m mat.Matrix, v mat.Vector, step string) ([]float64, error) {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, v)
	res := out.RawVector().Data
	if floats.HasNaN(res) || math.IsInf(floats.Sum(res), 0) {
		return nil, &kernel.NumericError{Step: step, Err: kernel.ErrNaN}
	}
	return res, nil
}

// MSE returns the mean squared difference between x and y after dividing
// each by its own maximum.  Scaling either signal by a positive constant
// leaves the result unchanged.
func MSE(x, y []float64) (float64, error) {
	if len(x) != len(y) || len(x) == 0 {
		return 0, fmt.Errorf("%w: lengths %d and %d", ErrShape, len(x), len(y))
	}
	mx := floats.Max(x)
	if mx == 0 {
		return 0, fmt.Errorf("%w: reference signal", ErrZeroMax)
	}
	my := floats.Max(y)
	if my == 0 {
		return 0, fmt.Errorf("%w: reconstructed signal", ErrZeroMax)
	}
	var sum float64
	for i := range x {
		d := x[i]/mx - y[i]/my
		sum += d * d
	}
	mse := sum / float64(len(x))
	if math.IsNaN(mse) || math.IsInf(mse, 0) {
		return 0, &kernel.NumericError{Step: "mean squared error", Err: kernel.ErrNaN}
	}
	return mse, nil
}
