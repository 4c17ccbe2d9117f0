// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package resfit is the overall repository for reservoir function generation
by kernel regression, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* smooth: Gaussian filtering of signals along the time axis.

* stim: stimulus waveforms for a set of onsets within a stimulation cycle,
and the standard target time series.

* trial: the Simulator interface through which networks are driven, and the
Runner that collects one post-transient, smoothed response per stimulus onset.

* kernel: estimation of the covariance-regularized response kernel from
training trials, plus network dimensionality and kernel basis functions.

* eval: readouts of target functions from the kernel, scored on held out
trials with a max-normalized mean squared error.

* reservoir: a recurrent network of rate-coded point neurons on a ring,
with distance-dependent connectivity, heterogeneous thresholds and pooled
feedforward / feedback inhibition, implementing trial.Simulator.

* contin: numerical continuation studies as a graph of named runs, executed
by an external continuation engine.

* funcgen: configuration and orchestration of the full function generation
experiment.

* examples: these actually compile into runnable programs.  examples/funcgen
runs the function generation experiment, examples/bifurc checks and
dry-runs continuation plans, examples/bench benchmarks reservoir sizes, and
examples/eqplot tabulates the rate-code equations of a single unit.
*/
package resfit
