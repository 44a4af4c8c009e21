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
)

const (
	etaKey      = "eta"
	metadataKey = "metadata"
)

// FormatETA formats elapsed time as e.g. 01h02m03s. Seconds are rounded.
func FormatETA(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02dh%02dm%02ds", secs/3600, (secs%3600)/60, secs%60)
}

// Score is a result of a single metric. A nil Value means
// the score could not be calculated.
type Score struct {
	Metric string
	Value  any
}

// MetricScores contains ordered metric scores of a measurement
// (or of one of its nodes) along with the elapsed time annotation.
type MetricScores struct {
	Values []Score
	ETA    string
}

func (ms *MetricScores) set(metric string, v any) {
	for i, s := range ms.Values {
		if s.Metric == metric {
			ms.Values[i].Value = v
			return
		}
	}
	ms.Values = append(ms.Values, Score{Metric: metric, Value: v})
}

func (ms MetricScores) Get(metric string) (any, bool) {
	for _, s := range ms.Values {
		if s.Metric == metric {
			return s.Value, true
		}
	}
	return nil, false
}

func (ms MetricScores) AsMap() map[string]any {
	ans := make(map[string]any, len(ms.Values)+1)
	for _, s := range ms.Values {
		ans[s.Metric] = s.Value
	}
	if ms.ETA != "" {
		ans[etaKey] = ms.ETA
	}
	return ans
}

// ----------------------------

type NodeScores struct {
	Node   string
	Scores MetricScores
}

// Scores of a measurement. Exactly one of Population and Nodes
// is used, depending on the measurement scale.
type Scores struct {
	Population *MetricScores
	Nodes      []NodeScores
}

func (s Scores) NodeIDs() []string {
	ans := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ans[i] = n.Node
	}
	return ans
}

func (s Scores) AsMap() map[string]any {
	if s.Population != nil {
		return s.Population.AsMap()
	}
	ans := make(map[string]any, len(s.Nodes))
	for _, n := range s.Nodes {
		ans[n.Node] = n.Scores.AsMap()
	}
	return ans
}
