// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package trial drives a network simulator once per stimulus onset and
collects the post-transient output of each trial as a channels x steps
signal matrix.

The simulator is consumed through the Simulator interface only.  Its
internal state is shared across trials, so the Runner resets it to the
same initial state before every trial, which makes each trial independent
of the order in which trials are run.
*/
package trial

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/resfit/smooth"
	"github.com/emer/resfit/stim"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrConfig is returned when the runner or onsets are misconfigured.
	// It is always returned before the simulator is invoked.
	ErrConfig = errors.New("trial: invalid configuration")

	// ErrShortSignal is returned when the simulator records fewer samples
	// than the post-transient window requires.
	ErrShortSignal = errors.New("trial: recorded signal shorter than window")

	// ErrChannels is returned when trials record different channel counts.
	ErrChannels = errors.New("trial: inconsistent channel count")
)

// State is an opaque snapshot of a simulator's internal state.
type State any

// Simulator is a network simulator driven with external input.
type Simulator interface {

	// Reset restores the given state, as previously returned by State.
	Reset(st State) error

	// Run simulates forward under inputs (time x input channels), recording
	// the output every samplingSteps steps, and returns the recording as
	// samples x output channels.
	Run(inputs *mat.Dense, samplingSteps int) (*mat.Dense, error)

	// State returns a snapshot of the current state.
	State() State
}

// Trial is the recorded response to one stimulus onset.
type Trial struct {

	// index of the trial in onset order
	Index int

	// onset of the stimulus, in simulation steps
	Onset int

	// phase of the onset within the stimulation cycle, in radians
	Phase float64

	// input trace on the first stimulated channel, sampled at the recording
	// stride over the post-transient window
	Input []float64

	// smoothed output signal, channels x steps
	Signal *mat.Dense
}

// Runner collects trials from a Simulator.
type Runner struct {

	// stimulus parameters used to build each trial's input
	Stim *stim.Params

	// recording stride in simulation steps
	Stride int

	// standard deviation, in recorded samples, of the output smoothing
	Sigma float64

	// total number of simulation steps available per trial: every
	// onset + Stim.CycleSteps must not exceed this
	Horizon int

	// the simulator to drive
	Sim Simulator

	// state restored before every trial
	Init State

	// if set, called by Collect after each recorded trial with the total number of trials
	OnTrial func(tr *Trial, n int)
}

// Steps returns the number of recorded samples per trial kept after
// truncation: one cycle at the recording stride.
func (rn *Runner) Steps() int {
	return int(math.Round(float64(rn.Stim.CycleSteps) / float64(rn.Stride)))
}

// Validate checks the runner configuration and the onsets, returning an
// ErrConfig-wrapped error without touching the simulator.
func (rn *Runner) Validate(onsets []int) error {
	if rn.Stim == nil || rn.Sim == nil {
		return fmt.Errorf("%w: runner needs Stim and Sim", ErrConfig)
	}
	if err := rn.Stim.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if rn.Stride <= 0 {
		return fmt.Errorf("%w: Stride = %d must be positive", ErrConfig, rn.Stride)
	}
	if rn.Steps() == 0 {
		return fmt.Errorf("%w: CycleSteps %d at Stride %d leaves no samples", ErrConfig, rn.Stim.CycleSteps, rn.Stride)
	}
	if rn.Stim.CycleSteps%rn.Stride != 0 {
		return fmt.Errorf("%w: CycleSteps %d is not a multiple of Stride %d", ErrConfig, rn.Stim.CycleSteps, rn.Stride)
	}
	if len(onsets) == 0 {
		return fmt.Errorf("%w: no onsets", ErrConfig)
	}
	for i, on := range onsets {
		if on < 0 {
			return fmt.Errorf("%w: onset %d = %d is negative", ErrConfig, i, on)
		}
		if on+rn.Stim.CycleSteps > rn.Horizon {
			return fmt.Errorf("%w: onset %d = %d plus cycle %d exceeds horizon %d", ErrConfig, i, on, rn.Stim.CycleSteps, rn.Horizon)
		}
	}
	return nil
}

// Collect runs one trial per onset, in onset order, each from the Init state.
// Simulator errors are returned unchanged.
func (rn *Runner) Collect(onsets []int) ([]*Trial, error) {
	if err := rn.Validate(onsets); err != nil {
		return nil, err
	}
	phases := stim.Phases(onsets, rn.Stim.CycleSteps)
	trls := make([]*Trial, len(onsets))
	nch := -1
	for i, on := range onsets {
		tr, err := rn.RunTrial(i, on)
		if err != nil {
			return nil, err
		}
		tr.Phase = phases[i]
		ch, _ := tr.Signal.Dims()
		if nch < 0 {
			nch = ch
		} else if ch != nch {
			return nil, fmt.Errorf("%w: trial %d has %d channels, expected %d", ErrChannels, i, ch, nch)
		}
		trls[i] = tr
		if rn.OnTrial != nil {
			rn.OnTrial(tr, len(onsets))
		}
	}
	return trls, nil
}

// RunTrial resets the simulator to Init, runs the trial with given onset,
// and returns the truncated, smoothed recording.
func (rn *Runner) RunTrial(idx, onset int) (*Trial, error) {
	steps := rn.Steps()
	inp := rn.Stim.Waveform(onset)
	if err := rn.Sim.Reset(rn.Init); err != nil {
		return nil, err
	}
	out, err := rn.Sim.Run(inp, rn.Stride)
	if err != nil {
		return nil, err
	}
	rows, cols := out.Dims()
	if rows < steps {
		return nil, fmt.Errorf("%w: trial %d recorded %d samples, need %d", ErrShortSignal, idx, rows, steps)
	}
	win := out.Slice(rows-steps, rows, 0, cols)
	sm := smooth.Columns(win, rn.Sigma)
	sig := mat.DenseCopyOf(sm.T())
	return &Trial{Index: idx, Onset: onset, Input: InputTrace(inp, rn.Stim.InStart, rn.Stride, steps), Signal: sig}, nil
}

// InputTrace returns the last steps values of channel ch of inp, sampled
// every stride rows starting from row 0.
func InputTrace(inp *mat.Dense, ch, stride, steps int) []float64 {
	rows, _ := inp.Dims()
	var smp []float64
	for r := 0; r < rows; r += stride {
		smp = append(smp, inp.At(r, ch))
	}
	if len(smp) > steps {
		smp = smp[len(smp)-steps:]
	}
	return smp
}

// Split partitions trials into train and test sets: every trial whose
// index is a multiple of every goes to test, the rest to train.
// every <= 0 puts all trials in train.
func Split(trls []*Trial, every int) (train, test []*Trial) {
	for i, tr := range trls {
		if every > 0 && i%every == 0 {
			test = append(test, tr)
		} else {
			train = append(train, tr)
		}
	}
	return
}

// Signals returns the signal matrices of the given trials.
func Signals(trls []*Trial) []*mat.Dense {
	sigs := make([]*mat.Dense, len(trls))
	for i, tr := range trls {
		sigs[i] = tr.Signal
	}
	return sigs
}
