// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/resfit/trial"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrConfig is returned for invalid network parameters.
	ErrConfig = errors.New("reservoir: invalid configuration")

	// ErrState is returned when Reset is given a state this network did not produce.
	ErrState = errors.New("reservoir: foreign state")

	// ErrInput is returned when the input does not match the network.
	ErrInput = errors.New("reservoir: invalid input")

	// ErrNotBuilt is returned when the network is used before Build.
	ErrNotBuilt = errors.New("reservoir: network not built")
)

// Params are the structural and dynamic parameters of the reservoir.
type Params struct {
	N       int         `def:"200" min:"2" desc:"number of units, arranged on a ring"`
	P       float64     `def:"0.2" min:"0" max:"1" desc:"fraction of units each unit receives from"`
	Dist    DistMethods `desc:"profile of connection probability over circular distance"`
	ZeroVal float64     `def:"0" desc:"unnormalized connection probability at distance zero (self connections)"`
	InvPow  float64     `def:"0.75" viewif:"Dist=Inverse" desc:"power of the Inverse distance profile"`
	Thr     float64     `def:"0.5" desc:"center of the Lorentzian distribution of unit firing thresholds"`
	Delta   float64     `def:"0.02" min:"0" desc:"half-width of the Lorentzian distribution of unit firing thresholds"`
	ThrMin  float64     `def:"0.3" desc:"lower bound of unit thresholds"`
	ThrMax  float64     `def:"0.7" desc:"upper bound of unit thresholds"`
	WtScale float32     `def:"1.5" min:"0" desc:"scaling of recurrent excitatory drive"`
	InScale float32     `def:"1" min:"0" desc:"scaling of external input drive"`
	Seed    uint64      `def:"42" desc:"random seed for thresholds and connectivity"`

	Act   ActParams   `view:"add-fields" desc:"activation parameters"`
	Inhib InhibParams `view:"add-fields" desc:"pooled inhibition parameters"`
}

func (pr *Params) Defaults() {
	pr.N = 200
	pr.P = 0.2
	pr.Dist = Inverse
	pr.ZeroVal = 0
	pr.InvPow = 0.75
	pr.Thr = 0.5
	pr.Delta = 0.02
	pr.ThrMin = 0.3
	pr.ThrMax = 0.7
	pr.WtScale = 1.5
	pr.InScale = 1
	pr.Seed = 42
	pr.Act.Defaults()
	pr.Inhib.Defaults()
}

// Update must be called after any changes to parameters
func (pr *Params) Update() {
	pr.Act.Update()
	pr.Inhib.Update()
}

// Validate checks parameters that Build depends on.
func (pr *Params) Validate() error {
	switch {
	case pr.N < 2:
		return fmt.Errorf("%w: N = %d must be at least 2", ErrConfig, pr.N)
	case !(pr.P > 0) || pr.P > 1:
		return fmt.Errorf("%w: P = %g must be in (0, 1]", ErrConfig, pr.P)
	case pr.Dist < 0 || pr.Dist >= DistMethodsN:
		return fmt.Errorf("%w: invalid distance method %v", ErrConfig, pr.Dist)
	case !(pr.ThrMin < pr.Thr) || !(pr.Thr < pr.ThrMax):
		return fmt.Errorf("%w: Thr = %g must lie within (%g, %g)", ErrConfig, pr.Thr, pr.ThrMin, pr.ThrMax)
	}
	return nil
}

// Network is a recurrent reservoir of rate-coded units on a ring, with
// distance-dependent excitatory connectivity and pooled inhibition.
// Every unit receives its own external input channel and is recorded as
// one output channel.
type Network struct {
	Params Params

	// firing threshold of each unit
	Thr []float32

	// incoming connections of each unit
	Cons [][]Con

	// dynamic state of each unit
	Units []Unit

	// pooled inhibition state
	Inhib Inhib

	// activations from the previous cycle, which drive recurrent excitation
	PrvAct []float32

	// number of cycles since the last InitActs or Reset
	Cycle int
}

// NewNetwork returns an unbuilt network with the given params.
func NewNetwork(pr Params) *Network {
	nt := &Network{Params: pr}
	nt.Params.Update()
	return nt
}

// Build samples thresholds and connectivity from Params.Seed and
// initializes activations.  Building twice with the same params gives the
// same network.
func (nt *Network) Build() error {
	pr := &nt.Params
	if err := pr.Validate(); err != nil {
		return err
	}
	pr.Update()
	src := rand.NewSource(pr.Seed)
	thr, err := Lorentzian(pr.N, pr.Thr, pr.Delta, pr.ThrMin, pr.ThrMax, src)
	if err != nil {
		return err
	}
	nt.Thr = make([]float32, pr.N)
	for i, t := range thr {
		nt.Thr[i] = float32(t)
	}
	pdf, err := DistPDF(pr.N, pr.Dist, pr.ZeroVal, pr.InvPow)
	if err != nil {
		return err
	}
	if nt.Cons, err = Circular(pr.N, pr.P, pdf, src); err != nil {
		return err
	}
	nt.Units = make([]Unit, pr.N)
	nt.PrvAct = make([]float32, pr.N)
	nt.InitActs()
	return nil
}

// InitActs initializes all unit and inhibition state.
func (nt *Network) InitActs() {
	for i := range nt.Units {
		nt.Params.Act.InitActs(&nt.Units[i])
		nt.PrvAct[i] = nt.Units[i].Act
	}
	nt.Inhib.Init()
	nt.Cycle = 0
}

// CycleStep advances the network by one cycle with the given external
// input per unit, which may be nil for no input.
func (nt *Network) CycleStep(ext []float64) {
	pr := &nt.Params
	ac := &pr.Act
	inh := &nt.Inhib
	inh.Ge.Init()
	for ri := range nt.Units {
		un := &nt.Units[ri]
		var net float32
		for _, c := range nt.Cons[ri] {
			net += c.Wt * nt.PrvAct[c.Send]
		}
		raw := pr.WtScale * net
		if ext != nil {
			raw += pr.InScale * float32(ext[ri])
		}
		ac.GeFromRaw(un, raw)
		inh.Ge.UpdateVal(un.Ge, int32(ri))
	}
	inh.Ge.CalcAvg()
	pr.Inhib.Inhib(inh)
	inh.Act.Init()
	for ri := range nt.Units {
		un := &nt.Units[ri]
		un.Gi = inh.Gi
		ac.VmFromG(un)
		ac.ActFromG(un, nt.Thr[ri])
		inh.Act.UpdateVal(un.Act, int32(ri))
	}
	inh.Act.CalcAvg()
	for ri := range nt.Units {
		nt.PrvAct[ri] = nt.Units[ri].Act
	}
	nt.Cycle++
}

// Settle runs the network for the given number of cycles without input
// and returns the resulting state, the common starting point of trials.
func (nt *Network) Settle(cycles int) (trial.State, error) {
	if nt.Units == nil {
		return nil, ErrNotBuilt
	}
	for i := 0; i < cycles; i++ {
		nt.CycleStep(nil)
	}
	return nt.State(), nil
}

// Run simulates one cycle per input row (time x N units) and records the
// activations every samplingSteps cycles, returning samples x N.
func (nt *Network) Run(inputs *mat.Dense, samplingSteps int) (*mat.Dense, error) {
	if nt.Units == nil {
		return nil, ErrNotBuilt
	}
	if samplingSteps <= 0 {
		return nil, fmt.Errorf("%w: samplingSteps = %d must be positive", ErrInput, samplingSteps)
	}
	steps, ch := inputs.Dims()
	if ch != len(nt.Units) {
		return nil, fmt.Errorf("%w: %d input channels for %d units", ErrInput, ch, len(nt.Units))
	}
	ns := steps / samplingSteps
	if ns == 0 {
		return nil, fmt.Errorf("%w: %d steps record no samples at stride %d", ErrInput, steps, samplingSteps)
	}
	rec := mat.NewDense(ns, ch, nil)
	si := 0
	for t := 0; t < steps; t++ {
		nt.CycleStep(inputs.RawRowView(t))
		if (t+1)%samplingSteps != 0 {
			continue
		}
		row := rec.RawRowView(si)
		for i := range nt.Units {
			row[i] = float64(nt.Units[i].Act)
		}
		si++
	}
	return rec, nil
}

// State is a snapshot of the dynamic state of a Network.
type State struct {
	Units  []Unit
	PrvAct []float32
	Inhib  Inhib
	Cycle  int
}

// State returns a deep copy of the current dynamic state.
func (nt *Network) State() trial.State {
	return &State{
		Units:  append([]Unit(nil), nt.Units...),
		PrvAct: append([]float32(nil), nt.PrvAct...),
		Inhib:  nt.Inhib,
		Cycle:  nt.Cycle,
	}
}

// Reset restores a state previously returned by State.
func (nt *Network) Reset(st trial.State) error {
	ss, ok := st.(*State)
	if !ok || ss == nil {
		return fmt.Errorf("%w: %T", ErrState, st)
	}
	if len(ss.Units) != len(nt.Units) || len(ss.PrvAct) != len(nt.PrvAct) {
		return fmt.Errorf("%w: state has %d units, network has %d", ErrState, len(ss.Units), len(nt.Units))
	}
	copy(nt.Units, ss.Units)
	copy(nt.PrvAct, ss.PrvAct)
	nt.Inhib = ss.Inhib
	nt.Cycle = ss.Cycle
	return nil
}

// NumCons returns the total number of connections.
func (nt *Network) NumCons() int {
	n := 0
	for _, rc := range nt.Cons {
		n += len(rc)
	}
	return n
}

// SizeReport returns a string reporting the number of units and
// connections and their memory footprint.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	nu := len(nt.Units)
	unitMem := nu * (int(unsafe.Sizeof(Unit{})) + 2*4)
	nc := nt.NumCons()
	conMem := nc * int(unsafe.Sizeof(Con{}))
	fmt.Fprintf(&b, "%14s:\t Units: %d\t UnitMem: %v\n", "Reservoir", nu, (datasize.ByteSize)(unitMem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Cons: %d\t ConMem: %v\n", "Recurrent", nc, (datasize.ByteSize)(conMem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Mem: %v\n", "Total", (datasize.ByteSize)(unitMem+conMem).HumanReadable())
	return b.String()
}
