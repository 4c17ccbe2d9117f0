// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package kernel estimates the linear response kernel of a reservoir from
a set of training trials.

Each training signal S_i is a channels x steps matrix.  With the
regularized per-trial covariance C_i = S_i S_i^T + alpha I, the mean
signal S and mean covariance C over trials, the estimator computes

	W = C^-1 S        (channels x steps)
	K = S^T W         (steps x steps)
	G = D^T W         (steps x steps), D = mean_i (S_i - S)

K maps a target time series t to its best linear reconstruction from the
mean training response, K t, and W t is the readout weight vector that
produces that reconstruction from any single trial's signal.  G measures
the sensitivity of the reconstruction to trial-to-trial variability.
All quantities depend only on the training signals and alpha.
*/
package kernel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrConfig is returned for invalid estimator inputs.
	ErrConfig = errors.New("kernel: invalid configuration")

	// ErrShape is returned when training signals differ in shape.
	ErrShape = errors.New("kernel: signal shape mismatch")

	// ErrSingular is returned when the mean covariance cannot be inverted.
	ErrSingular = errors.New("kernel: singular mean covariance")

	// ErrNaN is returned when a computed quantity is not finite.
	ErrNaN = errors.New("kernel: non-finite value")
)

// NumericError identifies the estimation step that produced a numerical failure.
type NumericError struct {
	Step string
	Err  error
}

func (ne *NumericError) Error() string {
	return fmt.Sprintf("kernel: %s: %v", ne.Step, ne.Err)
}

func (ne *NumericError) Unwrap() error { return ne.Err }

// Kernel holds the result of estimation from one training set.
type Kernel struct {

	// regularization added to the diagonal of every trial covariance
	Alpha float64

	// readout weight matrix, channels x steps
	W *mat.Dense

	// response kernel, steps x steps
	K *mat.Dense

	// variability kernel, steps x steps
	G *mat.Dense

	// mean training signal, channels x steps
	SMean *mat.Dense

	// mean deviation of the training signals from SMean, channels x steps
	SVar *mat.Dense

	// mean regularized covariance, channels x channels
	CMean *mat.SymDense

	// number of training trials
	N int
}

// Channels returns the number of signal channels.
func (kn *Kernel) Channels() int {
	r, _ := kn.W.Dims()
	return r
}

// Steps returns the number of time steps.
func (kn *Kernel) Steps() int {
	_, c := kn.W.Dims()
	return c
}

// Covariance returns S S^T + alpha I for the channels x steps signal s.
func Covariance(s mat.Matrix, alpha float64) *mat.SymDense {
	ch, _ := s.Dims()
	c := mat.NewSymDense(ch, nil)
	c.SymOuterK(1, s)
	for i := 0; i < ch; i++ {
		c.SetSym(i, i, c.At(i, i)+alpha)
	}
	return c
}

// Estimate computes the kernel from the training signals with regularization alpha.
func Estimate(train []*mat.Dense, alpha float64) (*Kernel, error) {
	if !(alpha > 0) {
		return nil, fmt.Errorf("%w: alpha = %g must be positive", ErrConfig, alpha)
	}
	n := len(train)
	if n == 0 {
		return nil, fmt.Errorf("%w: no training signals", ErrConfig)
	}
	ch, steps := train[0].Dims()
	for i, s := range train {
		r, c := s.Dims()
		if r != ch || c != steps {
			return nil, fmt.Errorf("%w: signal %d is %dx%d, expected %dx%d", ErrShape, i, r, c, ch, steps)
		}
	}
	nf := float64(n)

	sMean := mat.NewDense(ch, steps, nil)
	cMean := mat.NewSymDense(ch, nil)
	for _, s := range train {
		sMean.Add(sMean, s)
		cMean.AddSym(cMean, Covariance(s, alpha))
	}
	sMean.Scale(1/nf, sMean)
	cMean.ScaleSym(1/nf, cMean)
	if err := finite("mean covariance", cMean); err != nil {
		return nil, err
	}

	sVar := mat.NewDense(ch, steps, nil)
	dev := mat.NewDense(ch, steps, nil)
	for _, s := range train {
		dev.Sub(s, sMean)
		sVar.Add(sVar, dev)
	}
	sVar.Scale(1/nf, sVar)

	var chol mat.Cholesky
	if ok := chol.Factorize(cMean); !ok {
		return nil, &NumericError{Step: "invert mean covariance", Err: ErrSingular}
	}
	w := mat.NewDense(ch, steps, nil)
	if err := chol.SolveTo(w, sMean); err != nil {
		return nil, &NumericError{Step: "invert mean covariance", Err: fmt.Errorf("%w: %v", ErrSingular, err)}
	}
	if err := finite("readout weights W", w); err != nil {
		return nil, err
	}

	k := mat.NewDense(steps, steps, nil)
	k.Mul(sMean.T(), w)
	if err := finite("response kernel K", k); err != nil {
		return nil, err
	}
	g := mat.NewDense(steps, steps, nil)
	g.Mul(sVar.T(), w)
	if err := finite("variability kernel G", g); err != nil {
		return nil, err
	}
	return &Kernel{Alpha: alpha, W: w, K: k, G: g, SMean: sMean, SVar: sVar, CMean: cMean, N: n}, nil
}

// finite returns a NumericError for step if m has any NaN or Inf value.
func finite(step string, m mat.Matrix) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &NumericError{Step: step, Err: fmt.Errorf("%w at [%d, %d]", ErrNaN, i, j)}
			}
		}
	}
	return nil
}

// Cond returns the 2-norm condition number of c + alpha I.
func Cond(c mat.Symmetric, alpha float64) float64 {
	n := c.SymmetricDim()
	reg := mat.NewSymDense(n, nil)
	reg.CopySym(c)
	for i := 0; i < n; i++ {
		reg.SetSym(i, i, reg.At(i, i)+alpha)
	}
	return mat.Cond(reg, 2)
}
