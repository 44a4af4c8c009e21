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

package measure

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/SocialSim/socialsim/events"
)

type Kind string

const (
	KindScalar       Kind = "scalar"
	KindDistribution Kind = "distribution"
	KindTimeSeries   Kind = "timeSeries"
	KindSample       Kind = "sample"
	KindRanking      Kind = "ranking"
)

// Result is an output of a measurement. Its shape depends
// on the measurement and it is opaque to the evaluation engine.
type Result interface {
	Kind() Kind
	Len() int
}

// Measurement reduces an event collection to a derived statistic.
type Measurement interface {

	// Name is a human-readable label of the measurement including
	// its bound parameters. It is used in logs and in report metadata.
	Name() string

	Measure(data events.Collection) (Result, error)
}

// ----------------------------

type Scalar float64

func (s Scalar) Kind() Kind { return KindScalar }

func (s Scalar) Len() int { return 1 }

// ----------------------------

// Distribution maps a key (user, repo, day, ...) to a value.
type Distribution map[string]float64

func (d Distribution) Kind() Kind { return KindDistribution }

func (d Distribution) Len() int { return len(d) }

// Keys returns sorted keys of the distribution.
func (d Distribution) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// ----------------------------

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeries is a time-ordered sequence of values.
type TimeSeries []Point

func (ts TimeSeries) Kind() Kind { return KindTimeSeries }

func (ts TimeSeries) Len() int { return len(ts) }

// AsDistribution maps the series' days (2006-01-02) to their values.
func (ts TimeSeries) AsDistribution() Distribution {
	ans := make(Distribution, len(ts))
	for _, p := range ts {
		ans[p.Time.Format(time.DateOnly)] += p.Value
	}
	return ans
}

// ----------------------------

// Sample is an unordered list of observed values (e.g. delays).
type Sample []float64

func (s Sample) Kind() Kind { return KindSample }

func (s Sample) Len() int { return len(s) }

// ----------------------------

// Ranking is a list of ids ordered from the highest rank.
type Ranking []string

func (r Ranking) Kind() Kind { return KindRanking }

func (r Ranking) Len() int { return len(r) }

// ----------------------------

// Values extracts numeric values from a result. Distributions
// yield their values ordered by key.
func Values(res Result) ([]float64, error) {
	switch tRes := res.(type) {
	case Scalar:
		return []float64{float64(tRes)}, nil
	case Distribution:
		ans := make([]float64, 0, len(tRes))
		for _, k := range tRes.Keys() {
			ans = append(ans, tRes[k])
		}
		return ans, nil
	case TimeSeries:
		ans := make([]float64, len(tRes))
		for i, p := range tRes {
			ans[i] = p.Value
		}
		return ans, nil
	case Sample:
		return slices.Clone([]float64(tRes)), nil
	case nil:
		return nil, fmt.Errorf("no result")
	}
	return nil, fmt.Errorf("result of kind %s has no numeric values", res.Kind())
}
