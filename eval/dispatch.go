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
	"time"

	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/measure"
	"github.com/rs/zerolog/log"
)

const (
	DfltNumTopNodes = 100
)

// Outcome is a result of a single measurement evaluation.
// GroundTruth and Simulation contain the last calculated
// measurement results (i.e. for node-level measurements these
// are the results of the last node).
type Outcome struct {
	GroundTruth measure.Result
	Simulation  measure.Result
	Scores      Scores
}

// Dispatcher evaluates individual measurements of a registry.
type Dispatcher struct {
	registry    *Registry
	numTopNodes int
	now         func() time.Time
}

func NewDispatcher(registry *Registry, numTopNodes int) *Dispatcher {
	if numTopNodes <= 0 {
		numTopNodes = DfltNumTopNodes
	}
	return &Dispatcher{
		registry:    registry,
		numTopNodes: numTopNodes,
		now:         time.Now,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// RunMetrics calculates the measurement on both collections and scores
// the results with all the measurement's metrics. In case the measurement
// filters remove all the records of any of the collections, ErrVacuousFilter
// is returned and nothing is evaluated.
func (d *Dispatcher) RunMetrics(
	name MeasurementName,
	groundTruth, simulation events.Collection,
	nodes NodeLists,
) (Outcome, error) {
	start := d.now()
	desc, ok := d.registry.Get(name)
	if !ok {
		return Outcome{}, fmt.Errorf("failed to run measurement %s: %w", name, ErrUnknownMeasurement)
	}
	log.Info().
		Str("measurement", string(name)).
		Str("question", desc.Question).
		Msg("running measurement")

	if desc.Filters != nil {
		groundTruth = groundTruth.Filter(desc.Filters)
		simulation = simulation.Filter(desc.Filters)
		if groundTruth.IsEmpty() || simulation.IsEmpty() {
			side := "simulation"
			if groundTruth.IsEmpty() {
				side = "ground truth"
			}
			log.Error().
				Str("measurement", string(name)).
				Str("filter", desc.Filters.String()).
				Msgf("pre-filtered %s is empty", side)
			return Outcome{}, fmt.Errorf(
				"measurement %s, pre-filtered %s is empty using filter %s: %w",
				name, side, desc.Filters, ErrVacuousFilter,
			)
		}
	}

	var ans Outcome
	if desc.Scale == ScalePopulation {
		scores := new(MetricScores)
		ans.GroundTruth, ans.Simulation = d.scoreSubset(desc, groundTruth, simulation, scores, start)
		ans.Scores.Population = scores
		return ans, nil
	}

	nodeIDs := d.resolveNodes(desc, groundTruth, nodes)
	ans.Scores.Nodes = make([]NodeScores, 0, len(nodeIDs))
	field := desc.NodeType.Field()
	for _, node := range nodeIDs {
		filter := events.NodeFilter(field, node)
		nodeGT := groundTruth.Filter(filter)
		if nodeGT.IsEmpty() {
			log.Warn().
				Str("measurement", string(name)).
				Str("filter", filter.String()).
				Msg("ground truth not matching filter")
		}
		nodeSim := simulation.Filter(filter)
		if nodeSim.IsEmpty() {
			log.Warn().
				Str("measurement", string(name)).
				Str("filter", filter.String()).
				Msg("simulation not matching filter")
		}
		item := NodeScores{Node: node}
		ans.GroundTruth, ans.Simulation = d.scoreSubset(desc, nodeGT, nodeSim, &item.Scores, start)
		ans.Scores.Nodes = append(ans.Scores.Nodes, item)
	}
	return ans, nil
}

// resolveNodes returns the explicit node list for the descriptor's
// node type (without duplicates) or derives the most active nodes
// from the ground truth.
func (d *Dispatcher) resolveNodes(desc Descriptor, groundTruth events.Collection, nodes NodeLists) []string {
	explicit := nodes.For(desc.NodeType)
	if explicit == nil {
		return TopNodes(groundTruth, desc.NodeType, d.numTopNodes)
	}
	ans := make([]string, 0, len(explicit))
	seen := make(map[string]struct{}, len(explicit))
	for _, n := range explicit {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		ans = append(ans, n)
	}
	return ans
}

// scoreSubset measures both subsets and writes all the metric scores
// to the provided scores. If any of the subsets is empty or the
// measurement fails, all the scores are nil.
func (d *Dispatcher) scoreSubset(
	desc Descriptor,
	groundTruth, simulation events.Collection,
	scores *MetricScores,
	start time.Time,
) (measure.Result, measure.Result) {
	var gtRes, simRes measure.Result
	computable := !groundTruth.IsEmpty() && !simulation.IsEmpty()
	if computable {
		var err error
		log.Debug().Msgf("Measuring %s for ground truth data", desc.Measurement.Name())
		gtRes, err = desc.Measurement.Measure(groundTruth)
		if err == nil {
			log.Debug().Msgf("Measuring %s for simulation data", desc.Measurement.Name())
			simRes, err = desc.Measurement.Measure(simulation)
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("measurement", string(desc.Name)).
				Str("function", desc.Measurement.Name()).
				Msg("failed to measure data")
			gtRes, simRes = nil, nil
			computable = false
		}
	}

	for _, nm := range desc.Metrics {
		var score any
		if computable {
			log.Debug().Msgf("Calculating %s for %s", nm.Metric.Name(), desc.Measurement.Name())
			v, err := nm.Metric.Compare(gtRes, simRes)
			if err != nil {
				log.Error().
					Err(err).
					Str("measurement", string(desc.Name)).
					Str("metric", nm.Metric.Name()).
					Msg("failed to calculate metric")

			} else {
				score = v
			}
		}
		scores.set(nm.Name, score)
		scores.ETA = FormatETA(d.now().Sub(start))
	}
	return gtRes, simRes
}
