// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package funcgen runs the reservoir function generation experiment: a
reservoir is stimulated at evenly spaced onsets within a cycle, its
responses are split into training and test trials, a kernel is estimated
from the training trials, and readouts for the standard targets are scored
on the test trials.
*/
package funcgen

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/emer/emergent/v2/timer"
	"github.com/emer/empi/v2/mpi"
	"github.com/emer/resfit/eval"
	"github.com/emer/resfit/kernel"
	"github.com/emer/resfit/reservoir"
	"github.com/emer/resfit/stim"
	"github.com/emer/resfit/trial"
	"gonum.org/v1/gonum/stat"
)

// Sim holds the state of one function generation experiment.
type Sim struct {

	// configuration, validated by Run before anything is simulated
	Config Config

	// the reservoir
	Net *reservoir.Network

	// stimulus parameters
	Stim stim.Params

	// collects trials from Net
	Runner *trial.Runner

	// settled state every trial starts from
	Init trial.State

	// all recorded trials, in onset order
	Trials []*trial.Trial

	// training trials
	Train []*trial.Trial

	// held out test trials
	Test []*trial.Trial

	// kernel estimated from Train
	Kernel *kernel.Kernel

	// dimensionality of each training signal
	Dims []float64

	// basis summary of Kernel.K
	Basis *kernel.Basis

	// results for each target
	Results []*eval.Result

	// time spent running trials
	TrialTime timer.Time

	// time spent in kernel estimation and evaluation
	AnalysisTime timer.Time
}

// NewSim returns a sim with the given configuration.
func NewSim(cfg Config) *Sim {
	return &Sim{Config: cfg}
}

// ConfigNet builds the reservoir and the trial runner.
func (ss *Sim) ConfigNet() error {
	ss.Net = reservoir.NewNetwork(ss.Config.NetParams())
	if err := ss.Net.Build(); err != nil {
		return err
	}
	ss.Stim = ss.Config.StimParams()
	ss.Runner = &trial.Runner{
		Stim:    &ss.Stim,
		Stride:  ss.Config.Run.Stride,
		Sigma:   ss.Config.Stim.Sigma,
		Horizon: 2 * ss.Stim.CycleSteps,
		Sim:     ss.Net,
	}
	return nil
}

// Settle runs the reservoir without input to obtain the common initial
// state of all trials.
func (ss *Sim) Settle() error {
	if ss.Net == nil {
		return fmt.Errorf("%w: Settle before ConfigNet", ErrConfig)
	}
	st, err := ss.Net.Settle(ss.Config.Net.SettleSteps)
	if err != nil {
		return err
	}
	ss.Init = st
	ss.Runner.Init = st
	return nil
}

// RunTrials records one trial per onset and splits them into training and
// test sets.
func (ss *Sim) RunTrials() error {
	if ss.Init == nil {
		return fmt.Errorf("%w: RunTrials before Settle", ErrConfig)
	}
	onsets := stim.Onsets(ss.Config.Stim.NStims, ss.Stim.CycleSteps)
	if ss.Config.Log.Trials {
		ss.Runner.OnTrial = func(tr *trial.Trial, n int) {
			mpi.Printf("Finished simulation of trial #%d of %d.\n", tr.Index+1, n)
		}
	}
	ss.TrialTime.Start()
	trls, err := ss.Runner.Collect(onsets)
	ss.TrialTime.Stop()
	if err != nil {
		return err
	}
	ss.Trials = trls
	ss.Train, ss.Test = trial.Split(ss.Trials, ss.Config.Stim.NTests)
	return nil
}

// Targets returns the standard targets: a smoothed impulse at the
// configured delay and a product of two sines over one cycle.
func (ss *Sim) Targets() []stim.Target {
	tc := &ss.Config.Target
	steps := ss.Config.Steps()
	return []stim.Target{
		{Name: "impulse", Values: stim.Impulse(steps, tc.Delay, float64(int(float64(tc.Delay)*tc.DelayWidth)))},
		{Name: "sines", Values: stim.SineProduct(steps, tc.Dur, tc.F1, tc.F2)},
	}
}

// Analyze estimates the kernel from the training trials and evaluates it
// on each target.
func (ss *Sim) Analyze() error {
	if len(ss.Train) == 0 {
		return fmt.Errorf("%w: Analyze without training trials", ErrConfig)
	}
	ss.AnalysisTime.Start()
	defer ss.AnalysisTime.Stop()
	train := trial.Signals(ss.Train)
	ss.Dims = make([]float64, len(train))
	for i, s := range train {
		d, err := kernel.Dimensionality(s)
		if err != nil {
			return err
		}
		ss.Dims[i] = d
	}
	kn, err := kernel.Estimate(train, ss.Config.Run.Alpha)
	if err != nil {
		return err
	}
	ss.Kernel = kn
	ss.Basis = kernel.NewBasis(kn.K)
	tests := trial.Signals(ss.Test)
	ss.Results = nil
	for _, tg := range ss.Targets() {
		rs, err := eval.Evaluate(kn, tg.Name, tg.Values, tests)
		if err != nil {
			return err
		}
		ss.Results = append(ss.Results, rs)
	}
	return nil
}

// Run performs the whole experiment, saving the report if configured.
func (ss *Sim) Run() error {
	if err := ss.Config.Validate(); err != nil {
		return err
	}
	if err := ss.ConfigNet(); err != nil {
		return err
	}
	mpi.Printf("%s", ss.Net.SizeReport())
	mpi.Printf("Finding a stable initial network state ...\n")
	if err := ss.Settle(); err != nil {
		return err
	}
	mpi.Printf("Simulating %d trials ...\n", ss.Config.Stim.NStims)
	if err := ss.RunTrials(); err != nil {
		return err
	}
	mpi.Printf("Analyzing %d training and %d test trials ...\n", len(ss.Train), len(ss.Test))
	if err := ss.Analyze(); err != nil {
		return err
	}
	rp := ss.Report()
	mpi.Printf("%s", rp.String())
	if ss.Config.Log.SaveFile != "" {
		if err := rp.Save(ss.Config.Log.SaveFile); err != nil {
			return err
		}
		mpi.Printf("Saved report to %s\n", ss.Config.Log.SaveFile)
	}
	return nil
}

// TargetReport summarizes the scores of one target.
type TargetReport struct {
	Name    string    `toml:"name"`
	MSEs    []float64 `toml:"mses"`
	MeanMSE float64   `toml:"mean_mse"`
}

// Report summarizes an analyzed experiment.
type Report struct {
	Name         string         `toml:"name"`
	Channels     int            `toml:"channels"`
	Steps        int            `toml:"steps"`
	NTrain       int            `toml:"n_train"`
	NTest        int            `toml:"n_test"`
	Alpha        float64        `toml:"alpha"`
	Dim          float64        `toml:"dimensionality"`
	Cond         float64        `toml:"cond"`
	TrialSecs    float64        `toml:"trial_secs"`
	AnalysisSecs float64        `toml:"analysis_secs"`
	Targets      []TargetReport `toml:"targets"`
}

// Report returns the summary of the analyzed experiment.
func (ss *Sim) Report() *Report {
	rp := &Report{
		Name:         ss.Config.Name,
		NTrain:       len(ss.Train),
		NTest:        len(ss.Test),
		Alpha:        ss.Config.Run.Alpha,
		TrialSecs:    ss.TrialTime.TotalSecs(),
		AnalysisSecs: ss.AnalysisTime.TotalSecs(),
	}
	if len(ss.Dims) > 0 {
		rp.Dim = stat.Mean(ss.Dims, nil)
	}
	if ss.Kernel != nil {
		rp.Channels = ss.Kernel.Channels()
		rp.Steps = ss.Kernel.Steps()
		rp.Cond = kernel.Cond(ss.Kernel.CMean, 0)
	}
	for _, rs := range ss.Results {
		rp.Targets = append(rp.Targets, TargetReport{Name: rs.Name, MSEs: rs.MSEs, MeanMSE: rs.MeanMSE()})
	}
	return rp
}

func (rp *Report) String() string {
	s := fmt.Sprintf("%s: %d channels x %d steps, %d train / %d test trials, dimensionality %.3g, cond %.3g\n",
		rp.Name, rp.Channels, rp.Steps, rp.NTrain, rp.NTest, rp.Dim, rp.Cond)
	for _, tr := range rp.Targets {
		s += fmt.Sprintf("%14s:\t mean MSE: %.4g\t MSEs: %.4g\n", tr.Name, tr.MeanMSE, tr.MSEs)
	}
	s += fmt.Sprintf("%14s:\t trials: %.3gs\t analysis: %.3gs\n", "Time", rp.TrialSecs, rp.AnalysisSecs)
	return s
}

// Save writes the report as TOML.
func (rp *Report) Save(path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	return rp.write(fp)
}

// write encodes the report to wc and closes it, returning the first error.
func (rp *Report) write(wc io.WriteCloser) error {
	if err := toml.NewEncoder(wc).Encode(rp); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// OpenReport reads a report saved by Save.
func OpenReport(path string) (*Report, error) {
	rp := &Report{}
	if _, err := toml.DecodeFile(path, rp); err != nil {
		return nil, err
	}
	return rp, nil
}
