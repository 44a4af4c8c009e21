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
	"io"
	"os"
	"time"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/report"
	"github.com/SocialSim/socialsim/stats"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Engine evaluates a simulation against ground truth using
// all the selected measurements of a registry.
type Engine struct {
	conf        *cnf.Conf
	registry    *Registry
	groundTruth events.Collection
	simulation  events.Collection
	gtPath      string
	simPath     string
	archive     *stats.Database

	Selection Selection
	Nodes     NodeLists

	// Quiet disables printing of the encoded report to Stdout
	Quiet  bool
	Stdout io.Writer

	// OnDone is passed to the aggregator (see Aggregator.OnDone)
	OnDone func(name MeasurementName, err error)
}

// NewEngine loads ground truth and simulation events from CSV files.
func NewEngine(conf *cnf.Conf, gtPath, simPath string) (*Engine, error) {
	log.Info().
		Str("groundTruth", gtPath).
		Str("simulation", simPath).
		Msg("parsing simulated and ground truth events")
	t0 := time.Now()
	simulation, err := events.LoadCSV(simPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation engine: %w", err)
	}
	groundTruth, err := events.LoadCSV(gtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation engine: %w", err)
	}
	log.Info().Str("eta", FormatETA(time.Since(t0))).Msg("events loaded")
	ans := NewEngineFromData(conf, groundTruth, simulation)
	ans.gtPath = gtPath
	ans.simPath = simPath
	return ans, nil
}

// NewEngineFromData creates an engine for already loaded events
// using the default registry.
func NewEngineFromData(conf *cnf.Conf, groundTruth, simulation events.Collection) *Engine {
	return &Engine{
		conf:        conf,
		registry:    DefaultRegistry(),
		groundTruth: groundTruth,
		simulation:  simulation,
		Stdout:      os.Stdout,
	}
}

// SetRegistry replaces the default registry.
func (engine *Engine) SetRegistry(reg *Registry) {
	engine.registry = reg
}

func (engine *Engine) Registry() *Registry {
	return engine.registry
}

// SetArchive enables storing of evaluation results.
func (engine *Engine) SetArchive(db *stats.Database) {
	engine.archive = db
}

// Clone returns a copy of the engine sharing the loaded events
// and the archive. It is used to run evaluations with different
// selections concurrently.
func (engine *Engine) Clone() *Engine {
	ans := *engine
	return &ans
}

func (engine *Engine) GroundTruth() events.Collection {
	return engine.groundTruth
}

func (engine *Engine) Simulation() events.Collection {
	return engine.simulation
}

// Run evaluates the selected measurements without producing any output.
func (engine *Engine) Run() (*Report, error) {
	if engine.groundTruth.IsEmpty() || engine.simulation.IsEmpty() {
		log.Warn().
			Int("groundTruthSize", engine.groundTruth.Len()).
			Int("simulationSize", engine.simulation.Len()).
			Msg("nothing to evaluate")
		return nil, ErrEmptyInput
	}
	log.Info().Msg("starting evaluation")
	dispatcher := NewDispatcher(engine.registry, engine.conf.NumTopNodes)
	aggregator := NewAggregator(dispatcher, engine.conf.NumWorkers)
	aggregator.OnDone = engine.OnDone
	return aggregator.RunAll(engine.groundTruth, engine.simulation, engine.Selection, engine.Nodes), nil
}

// Evaluate runs the evaluation, prints the report (unless quiet) and saves
// it to outputPath (if not empty). The output format is derived from
// the path extension. With an archive set, the run is archived too.
func (engine *Engine) Evaluate(outputPath string) (*Report, error) {
	rep, err := engine.Run()
	if err != nil {
		return nil, err
	}
	converted := report.Convert(rep.AsMap())
	if !engine.Quiet {
		data, err := report.Encode(converted, report.FormatJSON)
		if err != nil {
			return nil, err
		}
		if _, err := engine.Stdout.Write(data); err != nil {
			return nil, fmt.Errorf("failed to print results: %w", err)
		}
	}
	if outputPath != "" {
		data, err := report.Encode(converted, report.FormatFromPath(outputPath))
		if err != nil {
			return nil, err
		}
		if err := report.WriteFile(outputPath, data); err != nil {
			return nil, err
		}
	}
	if engine.archive != nil {
		if err := engine.archiveReport(rep); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func (engine *Engine) archiveReport(rep *Report) error {
	rep.RunID = uuid.New().String()
	run := stats.RunRecord{
		ID:              rep.RunID,
		Datetime:        time.Now().Unix(),
		GroundTruthPath: engine.gtPath,
		SimulationPath:  engine.simPath,
		NumMeasurements: len(rep.Measurements),
		NumFailures:     len(rep.Failures),
		ETA:             rep.ETA,
	}
	if err := engine.archive.AddRun(run, rep.ScoreRecords(rep.RunID)); err != nil {
		return fmt.Errorf("failed to archive evaluation: %w", err)
	}
	log.Info().Str("runId", rep.RunID).Msg("evaluation archived")
	return nil
}
