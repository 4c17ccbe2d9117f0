// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import "github.com/emer/etable/v2/minmax"

// InhibParams parameterizes pooled feedforward (FF) and feedback (FB)
// inhibition (FFFB) across the whole reservoir, based on average (or
// maximum) excitatory conductance (FF) and average activation (FB).
// This keeps overall activity in a graded, bounded regime as recurrent
// excitation builds up.
type InhibParams struct {
	On       bool    `desc:"enable pooled inhibition"`
	Gi       float32 `min:"0" def:"1.8" desc:"overall inhibition gain -- scales both the ff and fb factors uniformly"`
	FF       float32 `viewif:"On" min:"0" def:"1" desc:"feedforward inhibition multiplier on average excitatory conductance"`
	FB       float32 `viewif:"On" min:"0" def:"1" desc:"feedback inhibition multiplier on average activation"`
	FBTau    float32 `viewif:"On" min:"0" def:"1.4,3,5" desc:"time constant in cycles for integrating feedback inhibition"`
	MaxVsAvg float32 `viewif:"On" def:"0,0.5,1" desc:"proportion of max vs. average conductance used in ff inhibition"`
	FF0      float32 `viewif:"On" def:"0.1" desc:"feedforward zero point for average conductance"`

	FBDt float32 `inactive:"+" view:"-" json:"-" desc:"rate = 1 / tau"`
}

func (ip *InhibParams) Update() {
	ip.FBDt = 1 / ip.FBTau
}

func (ip *InhibParams) Defaults() {
	ip.On = true
	ip.Gi = 1.8
	ip.FF = 1
	ip.FB = 1
	ip.FBTau = 1.4
	ip.MaxVsAvg = 0
	ip.FF0 = 0.1
	ip.Update()
}

// FFInhib returns the feedforward inhibition from average and max conductance.
func (ip *InhibParams) FFInhib(avgGe, maxGe float32) float32 {
	ffNetin := avgGe + ip.MaxVsAvg*(maxGe-avgGe)
	if ffNetin > ip.FF0 {
		return ip.FF * (ffNetin - ip.FF0)
	}
	return 0
}

// FBInhib computes feedback inhibition as a function of average activation.
func (ip *InhibParams) FBInhib(avgAct float32) float32 {
	return ip.FB * avgAct
}

// Inhib computes the pooled inhibition for the given state, which must
// have its Ge and Act averages updated.
func (ip *InhibParams) Inhib(inh *Inhib) {
	if !ip.On {
		inh.Zero()
		return
	}
	inh.FFi = ip.FFInhib(inh.Ge.Avg, inh.Ge.Max)
	inh.FBi += ip.FBDt * (ip.FBInhib(inh.Act.Avg) - inh.FBi)
	inh.Gi = ip.Gi * (inh.FFi + inh.FBi)
}

// Inhib contains the pooled inhibition state.
type Inhib struct {

	// computed feedforward inhibition
	FFi float32

	// computed feedback inhibition, integrated over time
	FBi float32

	// overall inhibition added into every unit's Gi
	Gi float32

	// average and max Ge excitatory conductance values, which drive FF inhibition
	Ge minmax.AvgMax32

	// average and max Act activation values, which drive FB inhibition
	Act minmax.AvgMax32
}

func (fi *Inhib) Init() {
	fi.Zero()
	fi.Ge.Init()
	fi.Act.Init()
}

// Zero clears inhibition but does not affect Ge, Act averages
func (fi *Inhib) Zero() {
	fi.FFi = 0
	fi.FBi = 0
	fi.Gi = 0
}
