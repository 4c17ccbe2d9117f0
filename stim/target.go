// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stim

import (
	"math"

	"github.com/emer/resfit/smooth"
	"gonum.org/v1/gonum/floats"
)

// Target is a named reference time series that the reservoir readout is
// trained to reproduce, one value per recorded step.
type Target struct {
	Name   string
	Values []float64
}

// Impulse returns a unit impulse at step at, smoothed with Gaussian sigma
// (in steps).  With sigma <= 0 the raw impulse is returned.
func Impulse(steps, at int, sigma float64) []float64 {
	imp := make([]float64, steps)
	if at >= 0 && at < steps {
		imp[at] = 1
	}
	if sigma <= 0 {
		return imp
	}
	return smooth.Gaussian1D(imp, sigma)
}

// SineProduct returns sin(2 pi f1 t) * sin(2 pi f2 t) sampled at steps
// evenly spaced times from 0 to dur inclusive (dur in seconds, f in Hz).
func SineProduct(steps int, dur, f1, f2 float64) []float64 {
	if steps <= 0 {
		return nil
	}
	ts := make([]float64, steps)
	if steps == 1 {
		ts[0] = 0
	} else {
		floats.Span(ts, 0, dur)
	}
	for i, t := range ts {
		ts[i] = math.Sin(2*math.Pi*f1*t) * math.Sin(2*math.Pi*f2*t)
	}
	return ts
}
