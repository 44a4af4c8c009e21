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
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/stats"
)

// Metadata is a copy of a measurement descriptor without
// the measurement function.
type Metadata struct {
	Question  string
	Query     string
	Quantify  string
	Phenomena string
	Scale     Scale
	NodeType  NodeType
	Filters   events.Filter
	Metrics   []NamedMetric
}

// AsMap exports the metadata in the report shape. Metrics are exported
// as the metric objects, report encoding renders them by their names.
func (md Metadata) AsMap() map[string]any {
	ans := map[string]any{
		"question":  md.Question,
		"query":     md.Query,
		"quantify":  md.Quantify,
		"phenomena": md.Phenomena,
		"scale":     string(md.Scale),
		"node_type": string(md.NodeType),
	}
	if md.Filters != nil {
		filters := make(map[string]any, len(md.Filters))
		for _, f := range md.Filters.Fields() {
			filters[string(f)] = slices.Clone(md.Filters[f])
		}
		ans["filters"] = filters
	}
	metrics := make(map[string]any, len(md.Metrics))
	for _, m := range md.Metrics {
		metrics[m.Name] = m.Metric
	}
	ans["metrics"] = metrics
	return ans
}

// ----------------------------

// Failure describes a measurement which could not be evaluated at all.
type Failure struct {
	Name   MeasurementName `json:"name"`
	Reason string          `json:"reason"`
}

type MeasurementReport struct {
	Name     MeasurementName
	Scale    Scale
	Scores   Scores
	Metadata Metadata
}

// Report contains results of evaluated measurements
// in the registry order.
type Report struct {

	// RunID is set once the report is archived
	RunID string

	Measurements []MeasurementReport
	Failures     []Failure
	ETA          string
}

func (r *Report) Get(name MeasurementName) (MeasurementReport, bool) {
	for _, m := range r.Measurements {
		if m.Name == name {
			return m, true
		}
	}
	return MeasurementReport{}, false
}

// AsMap exports the report as a nested map keyed by measurement names.
// Failed measurements are not included.
func (r *Report) AsMap() map[string]any {
	ans := make(map[string]any, len(r.Measurements)+1)
	for _, m := range r.Measurements {
		entry := m.Scores.AsMap()
		entry[metadataKey] = m.Metadata.AsMap()
		ans[string(m.Name)] = entry
	}
	ans[etaKey] = r.ETA
	return ans
}

// ScoreRecords flattens all the scores into records suitable
// for the results archive. Non-finite and structured scores are
// stored as JSON in the Detail field.
func (r *Report) ScoreRecords(runID string) []stats.ScoreRecord {
	ans := make([]stats.ScoreRecord, 0, len(r.Measurements)*3)
	add := func(measurement MeasurementName, node string, scores MetricScores) {
		for _, s := range scores.Values {
			rec := stats.ScoreRecord{
				ID:          stats.IdempotentID(runID, string(measurement), node, s.Metric),
				RunID:       runID,
				Measurement: string(measurement),
				Node:        node,
				Metric:      s.Metric,
			}
			switch tVal := s.Value.(type) {
			case nil:
			case float64:
				if math.IsNaN(tVal) || math.IsInf(tVal, 0) {
					rec.Detail = strconv.Quote(strconv.FormatFloat(tVal, 'g', -1, 64))

				} else {
					rec.Value = &tVal
				}
			default:
				detail, err := json.Marshal(tVal)
				if err == nil {
					rec.Detail = string(detail)
				}
			}
			ans = append(ans, rec)
		}
	}
	for _, m := range r.Measurements {
		if m.Scores.Population != nil {
			add(m.Name, "", *m.Scores.Population)
		}
		for _, n := range m.Scores.Nodes {
			add(m.Name, n.Node, n.Scores)
		}
	}
	return ans
}
