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
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/SocialSim/socialsim/events"
	"github.com/czcorpus/cnc-gokit/collections"
	"gonum.org/v1/gonum/floats"
)

const (
	day = 24 * time.Hour
)

var (
	ErrNoData    = errors.New("no data to measure")
	ErrUndefined = errors.New("measurement is undefined for the data")
)

func requireData(data events.Collection) error {
	if data.IsEmpty() {
		return ErrNoData
	}
	return nil
}

// topK returns up to k keys with the highest counts. Ties are resolved
// by ascending key so the output is deterministic.
func topK(counts map[string]int, k int) Ranking {
	entries := collections.MapToEntriesSorted(
		counts,
		func(a, b collections.MapEntry[string, int]) int {
			if a.V != b.V {
				return b.V - a.V
			}
			return strings.Compare(a.K, b.K)
		},
	)
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	ans := make(Ranking, len(entries))
	for i, e := range entries {
		ans[i] = e.K
	}
	return ans
}

func countsToDistribution(counts map[string]int) Distribution {
	ans := make(Distribution, len(counts))
	for k, v := range counts {
		ans[k] = float64(v)
	}
	return ans
}

func sortedCounts(counts map[string]int) []float64 {
	ans := make([]float64, 0, len(counts))
	for _, v := range counts {
		ans = append(ans, float64(v))
	}
	slices.Sort(ans)
	return ans
}

// gini calculates the Gini coefficient of ascending-sorted values.
func gini(values []float64) float64 {
	n := float64(len(values))
	total := floats.Sum(values)
	if n == 0 || total == 0 {
		return 0
	}
	var weighted float64
	for i, v := range values {
		weighted += float64(i+1) * v
	}
	return 2*weighted/(n*total) - (n+1)/n
}

// palma calculates the ratio between the share of the top 10% and
// the share of the bottom 40% of ascending-sorted values.
func palma(values []float64) (float64, error) {
	n := len(values)
	bottom := floats.Sum(values[:int(math.Floor(0.4*float64(n)))])
	top := floats.Sum(values[int(math.Floor(0.9*float64(n))):])
	if bottom == 0 {
		return 0, fmt.Errorf("bottom 40%% of %d values has zero share: %w", n, ErrUndefined)
	}
	return top / bottom, nil
}

// dailySeries aggregates per-day values into a gap-free series
// spanning the first to the last observed day.
func dailySeries(perDay map[time.Time]float64) TimeSeries {
	if len(perDay) == 0 {
		return TimeSeries{}
	}
	var first, last time.Time
	for d := range perDay {
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	ans := make(TimeSeries, 0, int(last.Sub(first)/day)+1)
	for d := first; !d.After(last); d = d.Add(day) {
		ans = append(ans, Point{Time: d, Value: perDay[d]})
	}
	return ans
}

func hoursBetween(t0, t1 time.Time) float64 {
	return t1.Sub(t0).Hours()
}
