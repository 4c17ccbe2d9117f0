// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package contin describes numerical continuation studies as a directed
acyclic graph of named runs.  Each run continues a solution branch of a
model in one or more free parameters, starting from a labeled point on
the branch computed by its origin run.  The continuation itself is done
by an external Engine.
*/
package contin

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

// DefaultInstallDir is the engine installation directory used when none is given.
const DefaultInstallDir = "~/PycharmProjects/auto-07p"

var (
	// ErrConfig is returned for invalid plans and paths.
	ErrConfig = errors.New("contin: invalid configuration")

	// ErrStartingPoint is returned when a run starts from a label its
	// origin branch does not have.
	ErrStartingPoint = errors.New("contin: unknown starting point")
)

// Run is one continuation run.
type Run struct {

	// unique name of the run, by which later runs refer to its branch
	Name string `toml:"name"`

	// name of the run whose branch this run starts from; empty for an
	// initial run from the model's initial conditions
	Origin string `toml:"origin,omitempty"`

	// label of the point on the origin branch to start from, e.g. UZ1, LP2, HB1
	StartingPoint string `toml:"starting_point,omitempty"`

	// name of the engine constants file / problem type, e.g. ivp, qif, qif2
	Problem string `toml:"problem"`

	// indices of the free continuation parameters
	ICP []int `toml:"icp,omitempty"`

	// engine constants by name, e.g. NMX, DSMAX, RL0, RL1, NPR
	Params map[string]float64 `toml:"params,omitempty"`

	// user-defined output points: parameter index -> values at which to label UZ points
	UZR map[string][]float64 `toml:"uzr,omitempty"`

	// labels at which to stop the run
	Stop []string `toml:"stop,omitempty"`

	// continue in both directions from the starting point
	Bidirectional bool `toml:"bidirectional,omitempty"`

	// start in the negative direction
	Reverse bool `toml:"reverse,omitempty"`
}

// Plan is a set of continuation runs on one model.
type Plan struct {

	// name of the model
	Model string `toml:"model"`

	// directory holding the model's equation and constants files
	WorkDir string `toml:"work_dir"`

	// number of state variables
	NDim int `toml:"ndim"`

	// number of model parameters
	NPar int `toml:"npar"`

	// runs, in declaration order
	Runs []*Run `toml:"runs"`
}

// Branch is the result of one run.
type Branch struct {

	// name of the run that computed the branch
	Name string

	// the run itself
	Run *Run

	// labels of the special and user points found on the branch
	Labels []string
}

// HasLabel returns true if the branch has the given label.
func (br *Branch) HasLabel(lbl string) bool {
	for _, l := range br.Labels {
		if l == lbl {
			return true
		}
	}
	return false
}

// LoadPlan reads a plan from a TOML file.
func LoadPlan(path string) (*Plan, error) {
	pl := &Plan{}
	if _, err := toml.DecodeFile(path, pl); err != nil {
		return nil, fmt.Errorf("%w: loading plan %s: %w", ErrConfig, path, err)
	}
	return pl, nil
}

// SavePlan writes the plan to a TOML file.
func (pl *Plan) SavePlan(path string) error {
	return saveTOML(pl, path)
}

// RunByName returns the run with the given name, or nil.
func (pl *Plan) RunByName(name string) *Run {
	for _, rn := range pl.Runs {
		if rn.Name == name {
			return rn
		}
	}
	return nil
}

// Validate checks that run names are unique and non-empty, that every
// origin names a run in the plan, that origins form no cycles, and that
// starting points are only given for runs with an origin.
func (pl *Plan) Validate() error {
	if pl.Model == "" {
		return fmt.Errorf("%w: plan has no model", ErrConfig)
	}
	names := make(map[string]*Run, len(pl.Runs))
	for i, rn := range pl.Runs {
		if rn == nil || rn.Name == "" {
			return fmt.Errorf("%w: run %d has no name", ErrConfig, i)
		}
		if _, has := names[rn.Name]; has {
			return fmt.Errorf("%w: duplicate run name %q", ErrConfig, rn.Name)
		}
		names[rn.Name] = rn
		if rn.Problem == "" {
			return fmt.Errorf("%w: run %q has no problem", ErrConfig, rn.Name)
		}
		if rn.StartingPoint != "" && rn.Origin == "" {
			return fmt.Errorf("%w: run %q has starting point %s but no origin", ErrConfig, rn.Name, rn.StartingPoint)
		}
		for k := range rn.UZR {
			if pi, err := strconv.Atoi(k); err != nil || pi <= 0 {
				return fmt.Errorf("%w: run %q: UZR key %q is not a parameter index", ErrConfig, rn.Name, k)
			}
		}
	}
	for _, rn := range pl.Runs {
		if rn.Origin != "" && names[rn.Origin] == nil {
			return fmt.Errorf("%w: run %q has unknown origin %q", ErrConfig, rn.Name, rn.Origin)
		}
	}
	for _, rn := range pl.Runs {
		seen := map[string]bool{rn.Name: true}
		for cr := rn; cr.Origin != ""; cr = names[cr.Origin] {
			if seen[cr.Origin] {
				return fmt.Errorf("%w: run %q is part of an origin cycle", ErrConfig, rn.Name)
			}
			seen[cr.Origin] = true
		}
	}
	return nil
}

// Order returns the runs in an order where every run comes after its
// origin, keeping declaration order among runs that are ready together.
// The plan must be valid.
func (pl *Plan) Order() []*Run {
	kids := make(map[string][]int)
	var ready []int
	for i, rn := range pl.Runs {
		if rn.Origin == "" {
			ready = append(ready, i)
		} else {
			kids[rn.Origin] = append(kids[rn.Origin], i)
		}
	}
	ord := make([]*Run, 0, len(pl.Runs))
	for len(ready) > 0 {
		ri := ready[0]
		ready = ready[1:]
		rn := pl.Runs[ri]
		ord = append(ord, rn)
		for _, ki := range kids[rn.Name] {
			ready = insertSorted(ready, ki)
		}
	}
	return ord
}

func insertSorted(s []int, v int) []int {
	i := len(s)
	for i > 0 && s[i-1] > v {
		i--
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// InstallDir resolves the engine installation directory from a command
// line argument.  DefaultInstallDir is used when arg is empty or names a
// .py script, which is what a script invocation without a directory
// leaves as its last argument.
func InstallDir(arg string) (string, error) {
	if arg == "" || strings.Contains(arg, ".py") {
		arg = DefaultInstallDir
	}
	dir, err := homedir.Expand(arg)
	if err != nil {
		return "", fmt.Errorf("%w: install dir %q: %w", ErrConfig, arg, err)
	}
	return filepath.Clean(dir), nil
}
