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

package stats

// RunRecord describes a single evaluation of a simulation
// against ground truth.
type RunRecord struct {

	// ID is a unique (UUID) identifier of the run
	ID string `json:"id"`

	// Datetime specifies when the evaluation finished (unix time)
	Datetime int64 `json:"datetime"`

	GroundTruthPath string `json:"groundTruthPath"`

	SimulationPath string `json:"simulationPath"`

	NumMeasurements int `json:"numMeasurements"`

	// NumFailures is the number of measurements which could not
	// be evaluated at all (e.g. because of a vacuous filter).
	NumFailures int `json:"numFailures"`

	ETA string `json:"eta"`
}

// ScoreRecord is a single metric score of a run.
type ScoreRecord struct {

	// ID is an idempotent identifier derived from the run ID
	// and the score coordinates (measurement, node, metric).
	ID string `json:"id"`

	RunID string `json:"runId"`

	Measurement string `json:"measurement"`

	// Node is empty for population-level measurements
	Node string `json:"node"`

	Metric string `json:"metric"`

	// Value is nil if the score could not be calculated
	// or if the score is structured (see Detail).
	Value *float64 `json:"value"`

	// Detail contains JSON-encoded structured scores
	// (e.g. KS test statistic with its p-value).
	Detail string `json:"detail,omitempty"`
}
