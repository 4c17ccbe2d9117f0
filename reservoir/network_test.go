// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"errors"
	"strings"
	"testing"

	"github.com/emer/resfit/trial"
	"gonum.org/v1/gonum/mat"
)

var _ trial.Simulator = (*Network)(nil)

func testNet(t *testing.T) *Network {
	pr := Params{}
	pr.Defaults()
	pr.N = 20
	nt := NewNetwork(pr)
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	return nt
}

func pulse(steps, n, width int) *mat.Dense {
	in := mat.NewDense(steps, n, nil)
	for ti := 0; ti < width; ti++ {
		for i := 0; i < n; i++ {
			in.Set(ti, i, 1)
		}
	}
	return in
}

func TestBuild(t *testing.T) {
	nt := testNet(t)
	if len(nt.Thr) != 20 || len(nt.Units) != 20 || len(nt.Cons) != 20 {
		t.Fatalf("sizes: %v %v %v\n", len(nt.Thr), len(nt.Units), len(nt.Cons))
	}
	if nt.NumCons() != 20*4 {
		t.Errorf("cons: %v\n", nt.NumCons())
	}
	for _, th := range nt.Thr {
		if th <= 0.3 || th >= 0.7 {
			t.Errorf("threshold out of bounds: %v\n", th)
		}
	}
	other := testNet(t)
	for i := range nt.Thr {
		if nt.Thr[i] != other.Thr[i] {
			t.Fatalf("same seed gave different thresholds\n")
		}
	}
	if !strings.Contains(nt.SizeReport(), "Cons: 80") {
		t.Errorf("size report:\n%v\n", nt.SizeReport())
	}

	bad := Params{}
	bad.Defaults()
	bad.P = 0
	if err := NewNetwork(bad).Build(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got: %v\n", err)
	}
}

func TestRunReset(t *testing.T) {
	nt := testNet(t)
	st, err := nt.Settle(20)
	if err != nil {
		t.Fatal(err)
	}
	in := pulse(30, 20, 10)
	r1, err := nt.Run(in, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := r1.Dims(); r != 10 || c != 20 {
		t.Fatalf("recording dims: %v x %v\n", r, c)
	}
	if err := nt.Reset(st); err != nil {
		t.Fatal(err)
	}
	r2, err := nt.Run(in, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(r1, r2) {
		t.Errorf("runs after reset differ\n")
	}
	if err := nt.Reset(st); err != nil {
		t.Fatal(err)
	}
	quiet, err := nt.Run(mat.NewDense(30, 20, nil), 3)
	if err != nil {
		t.Fatal(err)
	}
	if mat.Sum(r1) <= mat.Sum(quiet) {
		t.Errorf("input did not raise activity: %v vs %v\n", mat.Sum(r1), mat.Sum(quiet))
	}
}

func TestStateCopy(t *testing.T) {
	nt := testNet(t)
	st := nt.State().(*State)
	vm := st.Units[0].Vm
	if _, err := nt.Run(pulse(10, 20, 10), 1); err != nil {
		t.Fatal(err)
	}
	if st.Units[0].Vm != vm || st.Cycle != 0 {
		t.Errorf("state snapshot changed with network\n")
	}
	if nt.Cycle != 10 {
		t.Errorf("cycle: %v\n", nt.Cycle)
	}
}

func TestErrors(t *testing.T) {
	nt := testNet(t)
	if err := nt.Reset("settled"); !errors.Is(err, ErrState) {
		t.Errorf("expected ErrState, got: %v\n", err)
	}
	small := Params{}
	small.Defaults()
	small.N = 10
	sn := NewNetwork(small)
	if err := sn.Build(); err != nil {
		t.Fatal(err)
	}
	if err := nt.Reset(sn.State()); !errors.Is(err, ErrState) {
		t.Errorf("expected ErrState for size mismatch, got: %v\n", err)
	}
	if _, err := nt.Run(mat.NewDense(10, 5, nil), 1); !errors.Is(err, ErrInput) {
		t.Errorf("expected ErrInput for channels, got: %v\n", err)
	}
	if _, err := nt.Run(mat.NewDense(2, 20, nil), 3); !errors.Is(err, ErrInput) {
		t.Errorf("expected ErrInput for no samples, got: %v\n", err)
	}
	if _, err := NewNetwork(small).Run(mat.NewDense(2, 10, nil), 1); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("expected ErrNotBuilt, got: %v\n", err)
	}
}
