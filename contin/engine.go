// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contin

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"
)

// Engine performs continuation runs.
type Engine interface {

	// Run computes the branch of rn, starting from origin, which is nil
	// for runs without an origin.
	Run(ctx context.Context, pl *Plan, rn *Run, origin *Branch) (*Branch, error)
}

// Execute validates the plan and performs its runs in Order, handing each
// run the branch of its origin.  It returns the branches computed so far
// by run name.  Engine errors are returned wrapped with the run name, and
// execution stops between runs when ctx is done.
func Execute(ctx context.Context, pl *Plan, eng Engine) (map[string]*Branch, error) {
	if err := pl.Validate(); err != nil {
		return nil, err
	}
	brs := make(map[string]*Branch, len(pl.Runs))
	for _, rn := range pl.Order() {
		if err := ctx.Err(); err != nil {
			return brs, err
		}
		var org *Branch
		if rn.Origin != "" {
			org = brs[rn.Origin]
		}
		br, err := eng.Run(ctx, pl, rn, org)
		if err != nil {
			return brs, fmt.Errorf("contin: run %q: %w", rn.Name, err)
		}
		brs[rn.Name] = br
	}
	return brs, nil
}

// UserLabels returns the labels UZ1..UZn of the user points of rn, one per
// UZR value in order of parameter index, cut at the first UZ label in Stop.
func UserLabels(rn *Run) []string {
	keys := maps.Keys(rn.UZR)
	slices.SortFunc(keys, func(a, b string) int {
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		return ai - bi
	})
	n := 0
	for _, k := range keys {
		n += len(rn.UZR[k])
	}
	for _, s := range rn.Stop {
		if !strings.HasPrefix(s, "UZ") {
			continue
		}
		if k, err := strconv.Atoi(s[2:]); err == nil && k < n {
			n = k
		}
	}
	lbls := make([]string, n)
	for i := range lbls {
		lbls[i] = fmt.Sprintf("UZ%d", i+1)
	}
	return lbls
}

// Call records one run handed to a DryRun engine.
type Call struct {
	Run           string
	Origin        string
	StartingPoint string
}

// DryRun is an Engine that computes nothing.  It records its calls and
// returns branches labeled with the user points of each run, so that UZ
// starting points can be checked against their origins.  Other labels,
// such as LP or HB points, depend on the model and are accepted as given.
type DryRun struct {
	Calls []Call
}

func (dr *DryRun) Run(ctx context.Context, pl *Plan, rn *Run, origin *Branch) (*Branch, error) {
	if rn.Origin != "" && origin == nil {
		return nil, fmt.Errorf("%w: origin %q has no branch", ErrStartingPoint, rn.Origin)
	}
	if strings.HasPrefix(rn.StartingPoint, "UZ") && !origin.HasLabel(rn.StartingPoint) {
		return nil, fmt.Errorf("%w: %s not among %v of %q", ErrStartingPoint, rn.StartingPoint, origin.Labels, origin.Name)
	}
	dr.Calls = append(dr.Calls, Call{Run: rn.Name, Origin: rn.Origin, StartingPoint: rn.StartingPoint})
	return &Branch{Name: rn.Name, Run: rn, Labels: UserLabels(rn)}, nil
}

func saveTOML(v any, path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	return encodeTOML(fp, v)
}

// encodeTOML writes v to wc and closes it, returning the first error.
func encodeTOML(wc io.WriteCloser, v any) error {
	if err := toml.NewEncoder(wc).Encode(v); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
