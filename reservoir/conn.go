// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"
	"math"
	"strings"

	"github.com/goki/ki/kit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistMethods are the profiles of connection probability as a function of
// circular distance between units.
type DistMethods int32

//go:generate stringer -type=DistMethods

var KiT_DistMethods = kit.Enums.AddEnum(DistMethodsN, kit.NotBitFlag, nil)

func (ev DistMethods) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *DistMethods) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Inverse falls off as 1 / x^pow
	Inverse DistMethods = iota

	// Exp falls off as exp(-x)
	Exp

	DistMethodsN
)

// ParseDistMethod returns the method with given name, case insensitive.
func ParseDistMethod(s string) (DistMethods, error) {
	for m := Inverse; m < DistMethodsN; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return Inverse, fmt.Errorf("%w: invalid distance method %q", ErrConfig, s)
}

// Dist returns the unnormalized connection probability at distance x.
// At x = 0 it returns zeroVal.
func Dist(x int, method DistMethods, zeroVal, pow float64) (float64, error) {
	if x <= 0 {
		return zeroVal, nil
	}
	switch method {
	case Inverse:
		return 1 / math.Pow(float64(x), pow), nil
	case Exp:
		return math.Exp(-float64(x)), nil
	}
	return 0, fmt.Errorf("%w: invalid distance method %v", ErrConfig, method)
}

// DistPDF returns the normalized connection probabilities for distances 0..n-1.
func DistPDF(n int, method DistMethods, zeroVal, pow float64) ([]float64, error) {
	pdf := make([]float64, n)
	var sum float64
	for x := range pdf {
		p, err := Dist(x, method, zeroVal, pow)
		if err != nil {
			return nil, err
		}
		pdf[x] = p
		sum += p
	}
	if !(sum > 0) {
		return nil, fmt.Errorf("%w: distance profile %v has no mass", ErrConfig, method)
	}
	for x := range pdf {
		pdf[x] /= sum
	}
	return pdf, nil
}

// Lorentzian returns n samples from a Lorentzian (Cauchy) distribution with
// location eta and half-width delta, restricted to the open interval (lb, ub)
// by rejection.
func Lorentzian(n int, eta, delta, lb, ub float64, src rand.Source) ([]float64, error) {
	if !(delta > 0) || !(lb < ub) {
		return nil, fmt.Errorf("%w: Lorentzian needs delta > 0 and lb < ub, have delta = %g, (%g, %g)", ErrConfig, delta, lb, ub)
	}
	cd := distuv.StudentsT{Mu: eta, Sigma: delta, Nu: 1, Src: src}
	smp := make([]float64, n)
	for i := range smp {
		s := cd.Rand()
		for s <= lb || s >= ub {
			s = cd.Rand()
		}
		smp[i] = s
	}
	return smp, nil
}

// Con is one incoming connection.
type Con struct {
	Send int32   `desc:"index of the sending unit"`
	Wt   float32 `desc:"connection weight"`
}

// Circular returns the incoming connections of each of n units arranged
// on a ring.  Each unit receives int(p*n) distinct senders, drawn with
// probability pdf[d] at circular distance d, with weights proportional to
// pdf[d] normalized to sum to 1 per receiver.
func Circular(n int, p float64, pdf []float64, src rand.Source) ([][]Con, error) {
	if len(pdf) != n {
		return nil, fmt.Errorf("%w: pdf has %d entries for %d units", ErrConfig, len(pdf), n)
	}
	wts := make([]float64, n)
	npos := 0
	for o := range wts {
		wts[o] = pdf[min(o, n-o)]
		if wts[o] > 0 {
			npos++
		}
	}
	k := min(int(p*float64(n)), npos)
	if k <= 0 {
		return nil, fmt.Errorf("%w: p = %g gives no connections among %d units", ErrConfig, p, n)
	}
	cons := make([][]Con, n)
	for ri := range cons {
		cat := distuv.NewCategorical(wts, src)
		rc := make([]Con, k)
		var sum float32
		for ci := range rc {
			o := int(cat.Rand())
			cat.Reweight(o, 0)
			rc[ci] = Con{Send: int32((ri + o) % n), Wt: float32(wts[o])}
			sum += rc[ci].Wt
		}
		for ci := range rc {
			rc[ci].Wt /= sum
		}
		cons[ri] = rc
	}
	return cons, nil
}
