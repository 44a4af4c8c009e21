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
	"testing"
	"time"

	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/measure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "00h00m00s", FormatETA(0))
	assert.Equal(t, "00h00m02s", FormatETA(1600*time.Millisecond))
	assert.Equal(t, "01h02m03s", FormatETA(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "26h00m00s", FormatETA(26*time.Hour))
}

func TestRunMetricsUnknownMeasurement(t *testing.T) {
	d := NewDispatcher(DefaultRegistry(), 0)
	_, err := d.RunMetrics("nonexistent", events.Collection{}, events.Collection{}, NodeLists{})
	assert.ErrorIs(t, err, ErrUnknownMeasurement)
}

func TestRepoLivelinessDistributionScenario(t *testing.T) {
	gt := events.Collection{
		ev(0, events.ForkEvent, "u1", "r1"),
		ev(24, events.ForkEvent, "u2", "r1"),
		ev(25, events.PushEvent, "u2", "r1"),
	}
	sim := events.Collection{
		ev(0, events.ForkEvent, "u1", "r1"),
		ev(1, events.WatchEvent, "u1", "r1"),
	}
	d := NewDispatcher(DefaultRegistry(), 0)
	out, err := d.RunMetrics(NameRepoLivelinessDistribution, gt, sim, NodeLists{})
	require.NoError(t, err)
	assert.Equal(t, measure.Distribution{"r1": 2}, out.GroundTruth)
	assert.Equal(t, measure.Distribution{"r1": 1}, out.Simulation)
	require.NotNil(t, out.Scores.Population)
	assert.Nil(t, out.Scores.Nodes)
	for _, metric := range []string{"js_divergence", "rmse", "r2"} {
		v, ok := out.Scores.Population.Get(metric)
		assert.True(t, ok)
		assert.NotNil(t, v, metric)
	}
	rmse, _ := out.Scores.Population.Get("rmse")
	assert.InDelta(t, 1.0, rmse, 1e-9)
	assert.NotEmpty(t, out.Scores.Population.ETA)
}

func TestVacuousFilterAbandonsMeasurement(t *testing.T) {
	gt := events.Collection{
		ev(0, events.ForkEvent, "u1", "r1"),
	}
	sim := events.Collection{
		ev(0, events.WatchEvent, "u1", "r1"),
	}
	d := NewDispatcher(DefaultRegistry(), 0)
	var out Outcome
	var err error
	assert.NotPanics(t, func() {
		out, err = d.RunMetrics(NameRepoPopularityDistribution, gt, sim, NodeLists{})
	})
	assert.ErrorIs(t, err, ErrVacuousFilter)
	assert.Nil(t, out.Scores.Population)
	assert.Nil(t, out.Scores.Nodes)
}

func TestEmptyNodeSubsetNullsMetrics(t *testing.T) {
	gt := events.Collection{
		ev(0, events.PushEvent, "u1", "r1"),
		ev(1, events.PushEvent, "u1", "r2"),
		ev(25, events.PushEvent, "u2", "r1"),
	}
	sim := events.Collection{
		ev(0, events.PushEvent, "u1", "r1"),
		ev(2, events.PushEvent, "u3", "r3"),
	}
	d := NewDispatcher(DefaultRegistry(), 0)
	out, err := d.RunMetrics(
		NameRepoGrowth, gt, sim, NodeLists{Repos: []string{"r1", "r2", "r9", "r1"}})
	require.NoError(t, err)
	require.Equal(t, []string{"r1", "r2", "r9"}, out.Scores.NodeIDs())

	for _, metric := range []string{"rmse", "dtw"} {
		v, ok := out.Scores.Nodes[0].Scores.Get(metric)
		assert.True(t, ok)
		assert.NotNil(t, v)
	}
	for _, node := range out.Scores.Nodes[1:] {
		require.Equal(t, 2, len(node.Scores.Values))
		for _, s := range node.Scores.Values {
			assert.Nil(t, s.Value, "%s of %s", s.Metric, node.Node)
		}
		assert.NotEmpty(t, node.Scores.ETA)
	}
	// last node has no data at all
	assert.Nil(t, out.GroundTruth)
	assert.Nil(t, out.Simulation)
}

func TestDerivedNodesComeFromFilteredGroundTruth(t *testing.T) {
	gt := events.Collection{
		ev(0, events.WatchEvent, "u1", "r1"),
		ev(1, events.WatchEvent, "u2", "r1"),
		ev(2, events.ForkEvent, "u3", "r2"),
		ev(3, events.PushEvent, "u3", "r3"),
	}
	sim := events.Collection{
		ev(0, events.WatchEvent, "u1", "r1"),
	}
	d := NewDispatcher(DefaultRegistry(), 0)
	out, err := d.RunMetrics(NameRepoDiffusionDelay, gt, sim, NodeLists{Users: []string{"u1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, out.Scores.NodeIDs())
}

func TestNumTopNodesLimit(t *testing.T) {
	gt := events.Collection{
		ev(0, events.PushEvent, "u1", "r1"),
		ev(1, events.PushEvent, "u1", "r1"),
		ev(2, events.PushEvent, "u2", "r2"),
	}
	d := NewDispatcher(DefaultRegistry(), 1)
	out, err := d.RunMetrics(NameRepoGrowth, gt, gt, NodeLists{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, out.Scores.NodeIDs())
}

func TestMetricFailureIsIsolated(t *testing.T) {
	reg, err := NewRegistry(testingDescriptor("count", ScalePopulation, NodeUser, countEvents{}))
	require.NoError(t, err)
	d := NewDispatcher(reg, 0)
	d.now = fakeClock(time.Second)
	gt := events.Collection{ev(0, events.PushEvent, "u1", "r1"), ev(1, events.PushEvent, "u1", "r1")}
	sim := events.Collection{ev(0, events.PushEvent, "u1", "r1")}
	out, err := d.RunMetrics("count", gt, sim, NodeLists{})
	require.NoError(t, err)
	scores := out.Scores.Population
	assert.Equal(t, []Score{{Metric: "diff", Value: 1.0}, {Metric: "broken", Value: nil}}, scores.Values)
	// start, after "diff", after "broken"
	assert.Equal(t, "00h00m02s", scores.ETA)
	assert.Equal(t, map[string]any{"diff": 1.0, "broken": nil, "eta": "00h00m02s"}, scores.AsMap())
}

func TestMeasurementFailureNullsNode(t *testing.T) {
	reg, err := NewRegistry(testingDescriptor("failing", ScaleNode, NodeUser, failingMeasurement{}))
	require.NoError(t, err)
	d := NewDispatcher(reg, 0)
	gt := events.Collection{ev(0, events.PushEvent, "u1", "r1")}
	out, err := d.RunMetrics("failing", gt, gt, NodeLists{})
	require.NoError(t, err)
	require.Equal(t, 1, len(out.Scores.Nodes))
	for _, s := range out.Scores.Nodes[0].Scores.Values {
		assert.Nil(t, s.Value)
	}
}
