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
	"errors"
	"sync"
	"time"

	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/measure"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func ev(hours int, tp events.EventType, user, repo string) events.Event {
	return events.Event{Time: day0.Add(time.Duration(hours) * time.Hour), Type: tp, User: user, Repo: repo}
}

// fakeClock returns a clock advancing by step on each call.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	curr := day0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		curr = curr.Add(step)
		return curr
	}
}

// ----------------------------

type countEvents struct{}

func (m countEvents) Name() string { return "count_events" }

func (m countEvents) Measure(data events.Collection) (measure.Result, error) {
	return measure.Scalar(float64(data.Len())), nil
}

type failingMeasurement struct{}

func (m failingMeasurement) Name() string { return "failing" }

func (m failingMeasurement) Measure(data events.Collection) (measure.Result, error) {
	return nil, errors.New("measurement failure")
}

type panickingMeasurement struct{}

func (m panickingMeasurement) Name() string { return "panicking" }

func (m panickingMeasurement) Measure(data events.Collection) (measure.Result, error) {
	panic("unexpected data")
}

type scalarDiff struct{}

func (m scalarDiff) Name() string { return "scalar_diff" }

func (m scalarDiff) Compare(gt, sim measure.Result) (any, error) {
	return float64(gt.(measure.Scalar) - sim.(measure.Scalar)), nil
}

type failingMetric struct{}

func (m failingMetric) Name() string { return "failing_metric" }

func (m failingMetric) Compare(gt, sim measure.Result) (any, error) {
	return nil, errors.New("metric failure")
}

func testingDescriptor(name MeasurementName, scale Scale, nt NodeType, m measure.Measurement) Descriptor {
	return Descriptor{
		Name:        name,
		Question:    "test",
		Scale:       scale,
		NodeType:    nt,
		Measurement: m,
		Metrics: []NamedMetric{
			{Name: "diff", Metric: scalarDiff{}},
			{Name: "broken", Metric: failingMetric{}},
		},
	}
}
