/*------------------------------------------------------------------------------
* driver.go : concurrent multi-baseline post-processing driver
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package main

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rtkgo/internal/rtk"
)

// PairSpec names one rover/base baseline to process: an input epoch record
// file, an output solution file path, and which post-processing mode to run.
type PairSpec struct {
	Name     string `yaml:"name"`
	InFile   string `yaml:"in_file"`
	OutFile  string `yaml:"out_file"`
	PostMode string `yaml:"post_mode"` // forward, backward, combined
}

// RunConfig is cmd/rtkpost's top-level invocation config: the engine
// configuration shared by every baseline plus the list of baselines to run.
type RunConfig struct {
	ConfigPath string
	Pairs      []PairSpec
}

// PairResult is one baseline's outcome.
type PairResult struct {
	Name   string
	Epochs int
	Err    error
}

// Summary aggregates results across every baseline in one invocation.
type Summary struct {
	Results []PairResult
}

func postModeOf(s string) rtk.PostMode {
	switch s {
	case "backward":
		return rtk.PostBackward
	case "combined":
		return rtk.PostCombined
	default:
		return rtk.PostForward
	}
}

// Run drives every pair in cfg.Pairs through the Post-Processing Driver
// concurrently: one goroutine per pair, bounded by runtime.NumCPU(), errors
// collected with errgroup.Group so one failing baseline doesn't stop the
// others from completing -- §5 only forbids concurrent use of a single
// *Engine, not across independently-owned engines.
func Run(ctx context.Context, cfg RunConfig) (Summary, error) {
	popt, sopt, err := rtk.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return Summary{}, fmt.Errorf("driver: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, runtime.NumCPU())

	var mu sync.Mutex
	results := make([]PairResult, len(cfg.Pairs))

	for i, pair := range cfg.Pairs {
		i, pair := i, pair
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			n, err := runPair(*popt, *sopt, pair)
			mu.Lock()
			results[i] = PairResult{Name: pair.Name, Epochs: n, Err: err}
			mu.Unlock()
			if err != nil {
				Log.WithFields(logrus.Fields{"pair": pair.Name}).Warnf("baseline failed: %v", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return Summary{Results: results}, nil
}

func runPair(popt rtk.PrcOpt, sopt rtk.SolOpt, pair PairSpec) (int, error) {
	src, err := newJSONEpochSource(pair.InFile)
	if err != nil {
		return 0, err
	}
	sink, err := rtk.NewFileSink(pair.OutFile, &sopt)
	if err != nil {
		return 0, err
	}
	defer sink.Close()

	n, err := rtk.Run(popt, postModeOf(pair.PostMode), src, sink)
	if err != nil {
		return n, fmt.Errorf("pair %s: %w", pair.Name, err)
	}
	return n, nil
}
