// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

func TestDist(t *testing.T) {
	tests := []struct {
		x      int
		method DistMethods
		want   float64
	}{
		{0, Inverse, 0.25},
		{0, Exp, 0.25},
		{1, Inverse, 1},
		{4, Inverse, 0.5},
		{3, Exp, math.Exp(-3)},
	}
	for _, tt := range tests {
		got, err := Dist(tt.x, tt.method, 0.25, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1.0e-12 {
			t.Errorf("Dist(%v, %v): %v, expected %v\n", tt.x, tt.method, got, tt.want)
		}
	}
	if _, err := Dist(2, DistMethodsN, 0, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for invalid method, got: %v\n", err)
	}
}

func TestParseDistMethod(t *testing.T) {
	for s, want := range map[string]DistMethods{"inverse": Inverse, "Exp": Exp, "EXP": Exp} {
		m, err := ParseDistMethod(s)
		if err != nil || m != want {
			t.Errorf("ParseDistMethod(%q): %v, %v\n", s, m, err)
		}
	}
	if _, err := ParseDistMethod("gaussian"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got: %v\n", err)
	}
}

func TestDistPDF(t *testing.T) {
	pdf, err := DistPDF(10, Inverse, 0, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(floats.Sum(pdf)-1) > 1.0e-12 {
		t.Errorf("pdf sum: %v\n", floats.Sum(pdf))
	}
	if pdf[0] != 0 {
		t.Errorf("pdf at zero: %v\n", pdf[0])
	}
	for x := 2; x < len(pdf); x++ {
		if pdf[x] >= pdf[x-1] {
			t.Errorf("pdf not decreasing at %v: %v\n", x, pdf)
		}
	}
	if _, err := DistPDF(1, Exp, 0, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for empty profile, got: %v\n", err)
	}
}

func TestLorentzian(t *testing.T) {
	smp, err := Lorentzian(1000, 0.5, 0.02, 0.3, 0.7, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	near := 0
	for _, s := range smp {
		if s <= 0.3 || s >= 0.7 {
			t.Fatalf("sample out of bounds: %v\n", s)
		}
		if math.Abs(s-0.5) < 0.02 {
			near++
		}
	}
	// half of an untruncated Cauchy lies within one half-width
	if near < 400 {
		t.Errorf("samples within half-width: %v of %v\n", near, len(smp))
	}
	if _, err := Lorentzian(10, 0.5, 0, 0.3, 0.7, rand.NewSource(1)); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for zero delta, got: %v\n", err)
	}
}

func TestCircular(t *testing.T) {
	n := 20
	pdf, err := DistPDF(n, Inverse, 0, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	cons, err := Circular(n, 0.2, pdf, rand.NewSource(7))
	if err != nil {
		t.Fatal(err)
	}
	if len(cons) != n {
		t.Fatalf("receivers: %v\n", len(cons))
	}
	for ri, rc := range cons {
		if len(rc) != 4 {
			t.Errorf("unit %v has %v senders, expected 4\n", ri, len(rc))
		}
		seen := map[int32]bool{}
		var sum float32
		for _, c := range rc {
			if int(c.Send) == ri {
				t.Errorf("unit %v connects to itself\n", ri)
			}
			if seen[c.Send] {
				t.Errorf("unit %v receives twice from %v\n", ri, c.Send)
			}
			seen[c.Send] = true
			sum += c.Wt
		}
		if math.Abs(float64(sum)-1) > 1.0e-5 {
			t.Errorf("unit %v weights sum to %v\n", ri, sum)
		}
	}
	again, err := Circular(n, 0.2, pdf, rand.NewSource(7))
	if err != nil {
		t.Fatal(err)
	}
	for ri := range cons {
		for ci := range cons[ri] {
			if cons[ri][ci] != again[ri][ci] {
				t.Fatalf("same seed gave different connections at unit %v\n", ri)
			}
		}
	}
	if _, err := Circular(n, 0.2, pdf[:5], rand.NewSource(7)); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for short pdf, got: %v\n", err)
	}
	if _, err := Circular(n, 0.01, pdf, rand.NewSource(7)); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for no connections, got: %v\n", err)
	}
}
