// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package stim generates the extrinsic stimulation delivered to the reservoir
on each trial: a brief rectangular pulse into a contiguous range of input
channels, starting at a given onset within the stimulation cycle and
smoothed in time with a Gaussian kernel.  It also provides the onset
schedule across trials and the standard target time series.
*/
package stim

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/resfit/smooth"
	"gonum.org/v1/gonum/mat"
)

// ErrConfig is returned by Validate for inconsistent stimulus parameters.
var ErrConfig = errors.New("stim: invalid configuration")

// Params are the stimulus generation parameters.
type Params struct {

	// total number of input channels, one per reservoir unit
	Channels int `def:"200" min:"1"`

	// number of simulation steps in one stimulation cycle
	CycleSteps int `def:"1000" min:"1"`

	// width of the rectangular pulse, in steps
	Width int `def:"80" min:"1"`

	// pulse magnitude written into each stimulated channel
	Magnitude float64 `def:"1"`

	// first stimulated channel
	InStart int

	// one past the last stimulated channel
	InEnd int

	// standard deviation, in steps, of the Gaussian smoothing along time
	Sigma float64 `def:"10" min:"0"`
}

func (sp *Params) Defaults() {
	sp.Channels = 200
	sp.CycleSteps = 1000
	sp.Width = 80
	sp.Magnitude = 1
	sp.Sigma = 10
	sp.Update()
}

// Update must be called after any changes to parameters.
// It sets a default centered input range if none has been set.
func (sp *Params) Update() {
	if sp.InEnd <= sp.InStart {
		sp.InStart, sp.InEnd = InputRange(sp.Channels, 0.2)
	}
}

// Validate returns an ErrConfig-wrapped error describing the first
// inconsistency found, or nil.
func (sp *Params) Validate() error {
	switch {
	case sp.Channels <= 0:
		return fmt.Errorf("%w: Channels = %d must be positive", ErrConfig, sp.Channels)
	case sp.CycleSteps <= 0:
		return fmt.Errorf("%w: CycleSteps = %d must be positive", ErrConfig, sp.CycleSteps)
	case sp.Width <= 0 || sp.Width > sp.CycleSteps:
		return fmt.Errorf("%w: Width = %d must be in [1, %d]", ErrConfig, sp.Width, sp.CycleSteps)
	case sp.InStart < 0 || sp.InEnd > sp.Channels || sp.InStart >= sp.InEnd:
		return fmt.Errorf("%w: input range [%d, %d) not within %d channels", ErrConfig, sp.InStart, sp.InEnd, sp.Channels)
	case sp.Sigma < 0:
		return fmt.Errorf("%w: Sigma = %g must be non-negative", ErrConfig, sp.Sigma)
	}
	return nil
}

// Waveform returns the input for a trial with given onset: onset+CycleSteps
// rows (time) by Channels columns, zero except for the pulse of Width steps
// at onset in channels [InStart, InEnd), smoothed along time.
// The onset is assumed to have been validated by the caller.
func (sp *Params) Waveform(onset int) *mat.Dense {
	rows := onset + sp.CycleSteps
	inp := mat.NewDense(rows, sp.Channels, nil)
	end := min(onset+sp.Width, rows)
	for t := onset; t < end; t++ {
		for c := sp.InStart; c < sp.InEnd; c++ {
			inp.Set(t, c, sp.Magnitude)
		}
	}
	if sp.Sigma <= 0 {
		return inp
	}
	return smooth.Columns(inp, sp.Sigma)
}

// Generate returns one waveform per onset.
func (sp *Params) Generate(onsets []int) []*mat.Dense {
	wvs := make([]*mat.Dense, len(onsets))
	for i, on := range onsets {
		wvs[i] = sp.Waveform(on)
	}
	return wvs
}

// InputRange returns the [start, end) range of int(frac*n) channels
// centered within n channels.
func InputRange(n int, frac float64) (start, end int) {
	nin := int(frac * float64(n))
	center := int(float64(n) * 0.5)
	half := int(0.5 * float64(nin))
	return center - half, center + half
}

// Onsets returns n onset steps evenly spaced across one cycle of cycleSteps,
// starting at 0 and excluding the end of the cycle.
func Onsets(n, cycleSteps int) []int {
	ons := make([]int, n)
	for i := range ons {
		ons[i] = int(float64(i) * float64(cycleSteps) / float64(n))
	}
	return ons
}

// Phases returns the stimulation phase (radians) of each onset within the cycle.
func Phases(onsets []int, cycleSteps int) []float64 {
	phs := make([]float64, len(onsets))
	for i, on := range onsets {
		phs[i] = 2 * math.Pi * float64(on) / float64(cycleSteps)
	}
	return phs
}
