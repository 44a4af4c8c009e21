// Copyright 2025 The SocialSim Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics contains functions comparing a ground truth measurement
// result with the simulation one.
package metrics

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SocialSim/socialsim/measure"
)

var (
	ErrUnsupportedResult = errors.New("unsupported measurement result")
	ErrEmptyResult       = errors.New("empty measurement result")
)

// Metric compares two measurement results. The returned score is
// typically a float64 but it may be structured (e.g. KS test).
type Metric interface {

	// Name is a label of the metric including its bound parameters.
	Name() string

	Compare(gt, sim measure.Result) (any, error)
}

type Join string

const (
	JoinInner Join = "inner"
	JoinOuter Join = "outer"
)

func (j Join) Validate() error {
	switch j {
	case "", JoinInner, JoinOuter:
		return nil
	}
	return fmt.Errorf("unknown join type '%s'", j)
}

func checkPair(gt, sim measure.Result) error {
	if gt == nil || sim == nil {
		return ErrEmptyResult
	}
	if gt.Kind() != sim.Kind() {
		return fmt.Errorf(
			"cannot compare %s with %s: %w", gt.Kind(), sim.Kind(), ErrUnsupportedResult)
	}
	return nil
}

// aligned converts a pair of results into two equally long vectors
// of corresponding values. Keyed results (distributions, time series)
// are joined by their keys, samples are sorted and compared along
// their common prefix.
func aligned(gt, sim measure.Result, join Join) ([]float64, []float64, error) {
	if err := checkPair(gt, sim); err != nil {
		return nil, nil, err
	}
	var x, y []float64
	switch tGt := gt.(type) {
	case measure.Scalar:
		x = []float64{float64(tGt)}
		y = []float64{float64(sim.(measure.Scalar))}
	case measure.Distribution:
		x, y = joinByKey(tGt, sim.(measure.Distribution), join)
	case measure.TimeSeries:
		x, y = joinByKey(tGt.AsDistribution(), sim.(measure.TimeSeries).AsDistribution(), join)
	case measure.Sample:
		x = slices.Clone([]float64(tGt))
		y = slices.Clone([]float64(sim.(measure.Sample)))
		slices.Sort(x)
		slices.Sort(y)
		n := min(len(x), len(y))
		x, y = x[:n], y[:n]
	default:
		return nil, nil, fmt.Errorf("%s: %w", gt.Kind(), ErrUnsupportedResult)
	}
	if len(x) == 0 {
		return nil, nil, ErrEmptyResult
	}
	return x, y, nil
}

func joinByKey(gt, sim measure.Distribution, join Join) ([]float64, []float64) {
	keys := gt.Keys()
	if join == JoinOuter {
		for _, k := range sim.Keys() {
			if _, ok := gt[k]; !ok {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
	}
	x := make([]float64, 0, len(keys))
	y := make([]float64, 0, len(keys))
	for _, k := range keys {
		simV, ok := sim[k]
		if !ok && join != JoinOuter {
			continue
		}
		x = append(x, gt[k])
		y = append(y, simV)
	}
	return x, y
}

// values returns numeric values of both results, each on its own.
func values(gt, sim measure.Result) ([]float64, []float64, error) {
	if err := checkPair(gt, sim); err != nil {
		return nil, nil, err
	}
	x, err := measure.Values(gt)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", err, ErrUnsupportedResult)
	}
	y, err := measure.Values(sim)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", err, ErrUnsupportedResult)
	}
	if len(x) == 0 || len(y) == 0 {
		return nil, nil, ErrEmptyResult
	}
	return x, y, nil
}
