// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcgen

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/emergent/v2/econfig"
	"github.com/emer/resfit/reservoir"
	"github.com/emer/resfit/stim"
)

// ErrConfig is returned by Validate for inconsistent configurations.
var ErrConfig = errors.New("funcgen: invalid configuration")

// NetConfig has the reservoir network parameters.
type NetConfig struct {

	// number of reservoir units, which is also the number of input and output channels
	N int `default:"200" min:"2"`

	// fraction of units each unit receives from
	P float64 `default:"0.2"`

	// connection probability profile over circular distance: inverse or exp
	Dist string `default:"inverse"`

	// unnormalized connection probability at distance zero
	ZeroVal float64 `default:"0"`

	// power of the inverse distance profile
	InvPow float64 `default:"0.75"`

	// center of the Lorentzian distribution of unit thresholds
	Thr float64 `default:"0.5"`

	// half-width of the Lorentzian distribution of unit thresholds
	Delta float64 `default:"0.02"`

	// lower bound of unit thresholds
	ThrMin float64 `default:"0.3"`

	// upper bound of unit thresholds
	ThrMax float64 `default:"0.7"`

	// scaling of recurrent excitation
	WtScale float32 `default:"1.5"`

	// scaling of external input
	InScale float32 `default:"1"`

	// random seed for thresholds and connectivity
	Seed int `default:"42"`

	// number of cycles without input run to reach the common initial state of all trials
	SettleSteps int `default:"500"`
}

// StimConfig has the stimulation parameters.
type StimConfig struct {

	// number of stimulus onsets, evenly spaced over one cycle
	NStims int `default:"50" min:"2"`

	// every NTests-th trial, starting with the first, is held out for testing
	NTests int `default:"5" min:"2"`

	// number of simulation steps in one stimulation cycle
	CycleSteps int `default:"1000"`

	// width of the input pulse, in steps
	Width int `default:"80"`

	// magnitude of the input pulse
	Magnitude float64 `default:"1"`

	// fraction of channels, centered, that receive the input pulse
	InFrac float64 `default:"0.2"`

	// standard deviation of the Gaussian smoothing of inputs (in steps) and outputs (in samples)
	Sigma float64 `default:"10"`
}

// RunConfig has the recording and estimation parameters.
type RunConfig struct {

	// record the network output every Stride steps
	Stride int `default:"10"`

	// regularization added to the diagonal of each trial covariance
	Alpha float64 `default:"0.001"`
}

// TargetConfig has the parameters of the two standard targets.
type TargetConfig struct {

	// sample at which the delayed impulse target peaks
	Delay int `default:"60"`

	// width of the impulse target as a fraction of Delay
	DelayWidth float64 `default:"0.1"`

	// duration of one cycle in seconds, the time axis of the sine product target
	Dur float64 `default:"0.25"`

	// frequency of the first sine, in Hz
	F1 float64 `default:"6"`

	// frequency of the second sine, in Hz
	F2 float64 `default:"12"`
}

// LogConfig has the reporting parameters.
type LogConfig struct {

	// print progress per trial
	Trials bool `default:"true"`

	// if set, save the final report as TOML to this file
	SaveFile string
}

// Config has the overall configuration of the function generation experiment.
type Config struct {

	// name of the experiment, used in reports
	Name string `default:"FuncGen"`

	// network parameters
	Net NetConfig `display:"add-fields"`

	// stimulation parameters
	Stim StimConfig `display:"add-fields"`

	// recording and estimation parameters
	Run RunConfig `display:"add-fields"`

	// target parameters
	Target TargetConfig `display:"add-fields"`

	// reporting parameters
	Log LogConfig `display:"add-fields"`
}

// Defaults sets all fields from their default tags.
func (cfg *Config) Defaults() {
	econfig.SetFromDefaults(cfg)
}

// Steps returns the number of recorded samples per trial.
func (cfg *Config) Steps() int {
	if cfg.Run.Stride <= 0 {
		return 0
	}
	return int(math.Round(float64(cfg.Stim.CycleSteps) / float64(cfg.Run.Stride)))
}

// Validate checks the configuration before any simulation is done.
func (cfg *Config) Validate() error {
	if _, err := reservoir.ParseDistMethod(cfg.Net.Dist); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	pr := cfg.NetParams()
	if err := pr.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	sp := cfg.StimParams()
	if err := sp.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	switch {
	case cfg.Net.SettleSteps < 0:
		return fmt.Errorf("%w: SettleSteps = %d must be non-negative", ErrConfig, cfg.Net.SettleSteps)
	case cfg.Stim.NStims < 2:
		return fmt.Errorf("%w: NStims = %d must be at least 2", ErrConfig, cfg.Stim.NStims)
	case cfg.Stim.NTests < 2 || cfg.Stim.NTests > cfg.Stim.NStims:
		return fmt.Errorf("%w: NTests = %d must be in [2, NStims = %d] to leave trials for both sets", ErrConfig, cfg.Stim.NTests, cfg.Stim.NStims)
	case cfg.Run.Stride <= 0 || cfg.Steps() == 0:
		return fmt.Errorf("%w: Stride = %d leaves no samples in a cycle of %d", ErrConfig, cfg.Run.Stride, cfg.Stim.CycleSteps)
	case cfg.Stim.CycleSteps%cfg.Run.Stride != 0:
		return fmt.Errorf("%w: CycleSteps = %d is not a multiple of Stride = %d", ErrConfig, cfg.Stim.CycleSteps, cfg.Run.Stride)
	case !(cfg.Run.Alpha > 0):
		return fmt.Errorf("%w: Alpha = %g must be positive", ErrConfig, cfg.Run.Alpha)
	case cfg.Target.Delay < 0 || cfg.Target.Delay >= cfg.Steps():
		return fmt.Errorf("%w: target Delay = %d outside of %d samples", ErrConfig, cfg.Target.Delay, cfg.Steps())
	}
	return nil
}

// NetParams returns the reservoir params for this configuration.
func (cfg *Config) NetParams() reservoir.Params {
	nc := &cfg.Net
	pr := reservoir.Params{}
	pr.Defaults()
	pr.N = nc.N
	pr.P = nc.P
	pr.Dist, _ = reservoir.ParseDistMethod(nc.Dist)
	pr.ZeroVal = nc.ZeroVal
	pr.InvPow = nc.InvPow
	pr.Thr = nc.Thr
	pr.Delta = nc.Delta
	pr.ThrMin = nc.ThrMin
	pr.ThrMax = nc.ThrMax
	pr.WtScale = nc.WtScale
	pr.InScale = nc.InScale
	pr.Seed = uint64(nc.Seed)
	pr.Update()
	return pr
}

// StimParams returns the stimulus params for this configuration.
func (cfg *Config) StimParams() stim.Params {
	sc := &cfg.Stim
	sp := stim.Params{
		Channels:   cfg.Net.N,
		CycleSteps: sc.CycleSteps,
		Width:      sc.Width,
		Magnitude:  sc.Magnitude,
		Sigma:      sc.Sigma,
	}
	sp.InStart, sp.InEnd = stim.InputRange(cfg.Net.N, sc.InFrac)
	return sp
}
