// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"github.com/goki/mat32"
)

///////////////////////////////////////////////////////////////////////
//  act.go contains the rate-code activation params and functions

// XX1Params are the Noisy X/(X+1) rate-coded activation function parameters:
// a saturating sigmoid-like response with an initial largely-linear regime,
// convolved with gaussian noise to give graded responding near threshold.
// A piece-wise approximation is used instead of a lookup table.
type XX1Params struct {
	Gain         float32 `def:"100" min:"0" desc:"gain (gamma) of the rate-coded activation function -- lower values give more graded responses"`
	NVar         float32 `def:"0.005,0.01" min:"0" desc:"variance of the Gaussian noise kernel convolved with XX1 -- determines the curvature of the function near threshold"`
	VmActThr     float32 `def:"0.01" desc:"threshold on activation below which the direct vm - thr is used"`
	SigMult      float32 `def:"0.33" view:"-" json:"-" desc:"multiplier on sigmoid used for computing values for net < thr"`
	SigMultPow   float32 `def:"0.8" view:"-" json:"-" desc:"power for computing SigMultEff as function of gain * nvar"`
	SigGain      float32 `def:"3" view:"-" json:"-" desc:"gain multipler on (net - thr) for sigmoid used for computing values for net < thr"`
	InterpRange  float32 `def:"0.01" view:"-" json:"-" desc:"interpolation range above zero to use interpolation"`
	GainCorRange float32 `def:"10" view:"-" json:"-" desc:"range in units of nvar over which to apply gain correction to compensate for convolution"`
	GainCor      float32 `def:"0.1" view:"-" json:"-" desc:"gain correction multiplier -- how much to correct gains"`

	SigGainNVar float32 `view:"-" json:"-" desc:"sig_gain / nvar"`
	SigMultEff  float32 `view:"-" json:"-" desc:"overall multiplier on sigmoidal component for values below threshold"`
	SigValAt0   float32 `view:"-" json:"-" desc:"0.5 * SigMultEff -- used for interpolation portion"`
	InterpVal   float32 `view:"-" json:"-" desc:"function value at InterpRange - SigValAt0 -- for interpolation"`
}

func (xp *XX1Params) Update() {
	xp.SigGainNVar = xp.SigGain / xp.NVar
	xp.SigMultEff = xp.SigMult * mat32.Pow(xp.Gain*xp.NVar, xp.SigMultPow)
	xp.SigValAt0 = 0.5 * xp.SigMultEff
	xp.InterpVal = xp.XX1GainCor(xp.InterpRange) - xp.SigValAt0
}

func (xp *XX1Params) Defaults() {
	xp.Gain = 100
	xp.NVar = 0.005
	xp.VmActThr = 0.01
	xp.SigMult = 0.33
	xp.SigMultPow = 0.8
	xp.SigGain = 3.0
	xp.InterpRange = 0.01
	xp.GainCorRange = 10.0
	xp.GainCor = 0.1
	xp.Update()
}

// XX1 computes the basic x/(x+1) function
func (xp *XX1Params) XX1(x float32) float32 { return x / (x + 1) }

// XX1GainCor computes x/(x+1) with gain correction within GainCorRange
func (xp *XX1Params) XX1GainCor(x float32) float32 {
	gainCorFact := (xp.GainCorRange - (x / xp.NVar)) / xp.GainCorRange
	if gainCorFact < 0 {
		return xp.XX1(xp.Gain * x)
	}
	newGain := xp.Gain * (1 - xp.GainCor*gainCorFact)
	return xp.XX1(newGain * x)
}

// NoisyXX1 computes the noisy x/(x+1) function for x = drive above threshold.
func (xp *XX1Params) NoisyXX1(x float32) float32 {
	switch {
	case x < 0:
		return xp.SigMultEff / (1 + mat32.Exp(-(x * xp.SigGainNVar)))
	case x < xp.InterpRange:
		interp := 1 - ((xp.InterpRange - x) / xp.InterpRange)
		return xp.SigValAt0 + interp*xp.InterpVal
	default:
		return xp.XX1GainCor(x)
	}
}

// Chans are conductance channels used in the point-neuron equations.
type Chans struct {
	E float32 `desc:"excitatory sodium (Na) AMPA channels activated by synaptic glutamate"`
	L float32 `desc:"constant leak (potassium, K+) channels"`
	I float32 `desc:"inhibitory chloride (Cl-) channels activated by synaptic GABA"`
}

// SetAll sets all the values
func (ch *Chans) SetAll(e, l, i float32) {
	ch.E, ch.L, ch.I = e, l, i
}

// DtParams are the integration rate constants.
type DtParams struct {
	Integ float32 `def:"1,0.5" min:"0" desc:"overall rate constant, in cycles per simulation step"`
	VmTau float32 `def:"3.3" min:"1" desc:"membrane potential and activation time constant in cycles"`
	GTau  float32 `def:"1.4" min:"1" desc:"time constant for integrating synaptic conductances, in cycles"`

	VmDt float32 `view:"-" json:"-" desc:"nominal rate = Integ / tau"`
	GDt  float32 `view:"-" json:"-" desc:"rate = Integ / tau"`
}

func (dp *DtParams) Update() {
	dp.VmDt = dp.Integ / dp.VmTau
	dp.GDt = dp.Integ / dp.GTau
}

func (dp *DtParams) Defaults() {
	dp.Integ = 1
	dp.VmTau = 3.3
	dp.GTau = 1.4
	dp.Update()
}

// ActParams contains the activation params for reservoir units.
type ActParams struct {
	XX1     XX1Params `view:"inline" desc:"Noisy X/X+1 rate code activation function parameters"`
	Dt      DtParams  `view:"inline" desc:"time and rate constants for temporal derivatives"`
	Gbar    Chans     `view:"inline" desc:"[Defaults: 1, .1, 1] maximal conductances levels for channels"`
	Erev    Chans     `view:"inline" desc:"[Defaults: 1, .3, .25] reversal potentials for each channel"`
	VmMin   float32   `def:"0" desc:"minimum membrane potential"`
	VmMax   float32   `def:"2" desc:"maximum membrane potential"`
	InitVm  float32   `def:"0.4" desc:"initial membrane potential"`
	InitAct float32   `def:"0" desc:"initial activation"`
}

func (ac *ActParams) Defaults() {
	ac.XX1.Defaults()
	ac.Dt.Defaults()
	ac.Gbar.SetAll(1.0, 0.1, 1.0)
	ac.Erev.SetAll(1.0, 0.3, 0.25)
	ac.VmMin = 0
	ac.VmMax = 2
	ac.InitVm = 0.4
	ac.Update()
}

// Update must be called after any changes to parameters
func (ac *ActParams) Update() {
	ac.XX1.Update()
	ac.Dt.Update()
}

// InetFromG computes net current from conductances and Vm
func (ac *ActParams) InetFromG(vm, ge, gi float32) float32 {
	return ge*(ac.Erev.E-vm) + ac.Gbar.L*(ac.Erev.L-vm) + gi*(ac.Erev.I-vm)
}

// GeThrFromG computes the threshold for Ge given inhibition gi and the
// unit's firing threshold thr.
func (ac *ActParams) GeThrFromG(gi, thr float32) float32 {
	return (ac.Gbar.I*gi*(ac.Erev.I-thr) + ac.Gbar.L*(ac.Erev.L-thr)) / (thr - ac.Erev.E)
}

// Unit is the dynamic state of one reservoir unit.
type Unit struct {
	Ge  float32 `desc:"total excitatory synaptic conductance"`
	Gi  float32 `desc:"total inhibitory conductance"`
	Vm  float32 `desc:"membrane potential"`
	Act float32 `desc:"rate-coded activation"`
}

// InitActs initializes the unit state.
func (ac *ActParams) InitActs(un *Unit) {
	un.Ge = 0
	un.Gi = 0
	un.Vm = ac.InitVm
	un.Act = ac.InitAct
}

// GeFromRaw integrates Ge from the raw excitatory drive.
func (ac *ActParams) GeFromRaw(un *Unit, geRaw float32) {
	un.Ge += ac.Dt.GDt * (geRaw - un.Ge)
}

// VmFromG updates the membrane potential from conductances.
func (ac *ActParams) VmFromG(un *Unit) {
	ge := un.Ge * ac.Gbar.E
	gi := un.Gi * ac.Gbar.I
	nwVm := un.Vm + ac.Dt.VmDt*ac.InetFromG(un.Vm, ge, gi)
	un.Vm = mat32.Max(ac.VmMin, mat32.Min(ac.VmMax, nwVm))
}

// ActFromG computes rate-coded activation from conductances, for a unit
// with firing threshold thr.
func (ac *ActParams) ActFromG(un *Unit, thr float32) {
	var nwAct float32
	if un.Act < ac.XX1.VmActThr && un.Vm <= thr {
		// subthreshold: Vm dynamics drive the onset of activity
		nwAct = ac.XX1.NoisyXX1(un.Vm - thr)
	} else {
		ge := un.Ge * ac.Gbar.E
		nwAct = ac.XX1.NoisyXX1(ge - ac.GeThrFromG(un.Gi, thr))
	}
	un.Act += ac.Dt.VmDt * (nwAct - un.Act)
}
