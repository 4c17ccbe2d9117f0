// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcgen

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/emer/resfit/reservoir"
	"github.com/emer/resfit/trial"
)

func smallConfig() Config {
	cfg := Config{}
	cfg.Defaults()
	cfg.Net.N = 20
	cfg.Net.SettleSteps = 50
	cfg.Stim.NStims = 10
	cfg.Stim.NTests = 5
	cfg.Stim.CycleSteps = 200
	cfg.Stim.Width = 16
	cfg.Stim.Sigma = 2
	cfg.Run.Stride = 5
	cfg.Target.Delay = 24
	cfg.Log.Trials = false
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Config{}
	cfg.Defaults()
	if cfg.Name != "FuncGen" || cfg.Net.N != 200 || cfg.Net.Dist != "inverse" || cfg.Stim.NStims != 50 || cfg.Run.Alpha != 0.001 || !cfg.Log.Trials {
		t.Errorf("defaults: %+v\n", cfg)
	}
	if cfg.Steps() != 100 {
		t.Errorf("steps: %v\n", cfg.Steps())
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
	sp := cfg.StimParams()
	if sp.Channels != 200 || sp.InStart != 80 || sp.InEnd != 120 {
		t.Errorf("stim params: %+v\n", sp)
	}
	pr := cfg.NetParams()
	if pr.N != 200 || pr.Dist != reservoir.Inverse || pr.Seed != 42 {
		t.Errorf("net params: %+v\n", pr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  func(cfg *Config)
	}{
		{"dist", func(cfg *Config) { cfg.Net.Dist = "gaussian" }},
		{"p", func(cfg *Config) { cfg.Net.P = 0 }},
		{"settle", func(cfg *Config) { cfg.Net.SettleSteps = -1 }},
		{"stims", func(cfg *Config) { cfg.Stim.NStims = 1 }},
		{"tests", func(cfg *Config) { cfg.Stim.NTests = 1 }},
		{"width", func(cfg *Config) { cfg.Stim.Width = 0 }},
		{"in frac", func(cfg *Config) { cfg.Stim.InFrac = 0 }},
		{"stride", func(cfg *Config) { cfg.Run.Stride = 0 }},
		{"stride multiple", func(cfg *Config) { cfg.Stim.CycleSteps = 203 }},
		{"alpha", func(cfg *Config) { cfg.Run.Alpha = 0 }},
		{"delay", func(cfg *Config) { cfg.Target.Delay = 40 }},
	}
	for _, tt := range tests {
		cfg := smallConfig()
		tt.set(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%v: expected ErrConfig, got: %v\n", tt.name, err)
		}
	}
	cfg := smallConfig()
	cfg.Net.Dist = "EXP"
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
	cfg.Net.Dist = "gaussian"
	if err := cfg.Validate(); !errors.Is(err, reservoir.ErrConfig) {
		t.Errorf("expected wrapped reservoir.ErrConfig, got: %v\n", err)
	}
}

func TestTargets(t *testing.T) {
	ss := NewSim(smallConfig())
	tgs := ss.Targets()
	if len(tgs) != 2 || len(tgs[0].Values) != 40 || len(tgs[1].Values) != 40 {
		t.Fatalf("targets: %v\n", tgs)
	}
	mx := 0
	for i, v := range tgs[0].Values {
		if v > tgs[0].Values[mx] {
			mx = i
		}
	}
	if mx != 24 {
		t.Errorf("impulse peak at %v\n", mx)
	}
}

func TestOrder(t *testing.T) {
	ss := NewSim(smallConfig())
	if err := ss.Settle(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for Settle before ConfigNet, got: %v\n", err)
	}
	if err := ss.ConfigNet(); err != nil {
		t.Fatal(err)
	}
	if err := ss.RunTrials(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for RunTrials before Settle, got: %v\n", err)
	}
	if err := ss.Analyze(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for Analyze before RunTrials, got: %v\n", err)
	}
}

func TestRun(t *testing.T) {
	cfg := smallConfig()
	cfg.Log.SaveFile = filepath.Join(t.TempDir(), "report.toml")
	ss := NewSim(cfg)
	if err := ss.Run(); err != nil {
		t.Fatal(err)
	}
	if len(ss.Trials) != 10 || len(ss.Train) != 8 || len(ss.Test) != 2 {
		t.Fatalf("trials: %v train: %v test: %v\n", len(ss.Trials), len(ss.Train), len(ss.Test))
	}
	if ss.Test[0].Index != 0 || ss.Test[1].Index != 5 {
		t.Errorf("test trials: %v %v\n", ss.Test[0].Index, ss.Test[1].Index)
	}
	for _, tr := range ss.Trials {
		if r, c := tr.Signal.Dims(); r != 20 || c != 40 {
			t.Errorf("trial %v signal: %v x %v\n", tr.Index, r, c)
		}
	}
	if ss.Kernel.Steps() != 40 || ss.Kernel.Channels() != 20 || len(ss.Basis.Mean) != 40 {
		t.Errorf("kernel: %v x %v\n", ss.Kernel.Channels(), ss.Kernel.Steps())
	}
	if len(ss.Results) != 2 {
		t.Fatalf("results: %v\n", len(ss.Results))
	}
	for _, rs := range ss.Results {
		if len(rs.MSEs) != 2 || math.IsNaN(rs.MeanMSE()) || math.IsInf(rs.MeanMSE(), 0) {
			t.Errorf("%v mses: %v\n", rs.Name, rs.MSEs)
		}
	}
	rp, err := OpenReport(cfg.Log.SaveFile)
	if err != nil {
		t.Fatal(err)
	}
	if rp.Name != "FuncGen" || rp.NTrain != 8 || rp.NTest != 2 || len(rp.Targets) != 2 || rp.Targets[1].Name != "sines" {
		t.Errorf("saved report: %+v\n", rp)
	}

	// each trial starts from the same settled state, so rerunning one
	// trial reproduces its recording
	tr, err := ss.Runner.RunTrial(3, ss.Trials[3].Onset)
	if err != nil {
		t.Fatal(err)
	}
	if !equalSignals(tr, ss.Trials[3]) {
		t.Errorf("rerun of trial 3 differs\n")
	}
}

func TestRunStrideMismatch(t *testing.T) {
	cfg := smallConfig()
	cfg.Stim.CycleSteps = 203
	ss := NewSim(cfg)
	if err := ss.Run(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got: %v\n", err)
	}
	if ss.Net != nil || len(ss.Trials) != 0 {
		t.Errorf("network built or trials run on invalid config\n")
	}
}

func equalSignals(a, b *trial.Trial) bool {
	r, c := a.Signal.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if a.Signal.At(i, j) != b.Signal.At(i, j) {
				return false
			}
		}
	}
	return true
}

// closeBuffer is a WriteCloser whose Close fails with err.
type closeBuffer struct {
	bytes.Buffer
	err error
}

func (cb *closeBuffer) Close() error { return cb.err }

func TestReportWriteClose(t *testing.T) {
	rp := &Report{Name: "FuncGen", NTrain: 8}
	errFlush := errors.New("flush failed")
	cb := &closeBuffer{err: errFlush}
	if err := rp.write(cb); err != errFlush {
		t.Errorf("expected close error, got: %v\n", err)
	}
	if cb.Len() == 0 {
		t.Errorf("report not encoded before close\n")
	}
	cb = &closeBuffer{}
	if err := rp.write(cb); err != nil {
		t.Error(err)
	}
	if err := rp.Save(filepath.Join(t.TempDir(), "none", "report.toml")); err == nil {
		t.Errorf("expected error saving into a missing directory\n")
	}
}
