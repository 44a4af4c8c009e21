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

package eval

import (
	"fmt"

	"github.com/SocialSim/socialsim/events"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type measurementResult struct {
	outcome Outcome
	err     error
}

// Aggregator runs a selection of registry measurements and
// assembles their results into a report.
type Aggregator struct {
	dispatcher *Dispatcher
	numWorkers int

	// OnDone, if set, is called after each finished measurement.
	// With more workers, it may be called concurrently.
	OnDone func(name MeasurementName, err error)
}

func NewAggregator(dispatcher *Dispatcher, numWorkers int) *Aggregator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Aggregator{
		dispatcher: dispatcher,
		numWorkers: numWorkers,
	}
}

// runIsolated runs a single measurement and converts a possible
// panic of a measurement or metric function into an error.
func (agg *Aggregator) runIsolated(
	name MeasurementName,
	groundTruth, simulation events.Collection,
	nodes NodeLists,
) (ans measurementResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("measurement", string(name)).
				Interface("panic", r).
				Msg("measurement failed")
			ans = measurementResult{err: fmt.Errorf("measurement %s failed: %v", name, r)}
		}
	}()
	outcome, err := agg.dispatcher.RunMetrics(name, groundTruth, simulation, nodes)
	return measurementResult{outcome: outcome, err: err}
}

// RunAll evaluates all the measurements matching the selection. Failed
// measurements are not part of Report.Measurements, they are listed
// in Report.Failures instead.
func (agg *Aggregator) RunAll(
	groundTruth, simulation events.Collection,
	sel Selection,
	nodes NodeLists,
) *Report {
	start := agg.dispatcher.now()
	descs := agg.dispatcher.Registry().Select(sel)
	results := make([]measurementResult, len(descs))

	var grp errgroup.Group
	grp.SetLimit(agg.numWorkers)
	for i, desc := range descs {
		grp.Go(func() error {
			results[i] = agg.runIsolated(desc.Name, groundTruth, simulation, nodes)
			if agg.OnDone != nil {
				agg.OnDone(desc.Name, results[i].err)
			}
			return nil
		})
	}
	grp.Wait()

	ans := &Report{
		Measurements: make([]MeasurementReport, 0, len(descs)),
	}
	for i, desc := range descs {
		if results[i].err != nil {
			ans.Failures = append(ans.Failures, Failure{Name: desc.Name, Reason: results[i].err.Error()})
			continue
		}
		ans.Measurements = append(
			ans.Measurements,
			MeasurementReport{
				Name:     desc.Name,
				Scale:    desc.Scale,
				Scores:   results[i].outcome.Scores,
				Metadata: desc.Metadata(),
			},
		)
	}
	ans.ETA = FormatETA(agg.dispatcher.now().Sub(start))
	log.Info().
		Int("numEvaluated", len(ans.Measurements)).
		Int("numFailed", len(ans.Failures)).
		Str("eta", ans.ETA).
		Msg("finished evaluation")
	return ans
}
