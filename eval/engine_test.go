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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testingGTPath  = "../testdata/gt_events.csv"
	testingSimPath = "../testdata/sim_events.csv"
)

func testingConf() *cnf.Conf {
	return &cnf.Conf{NumTopNodes: 10, NumWorkers: 2}
}

func TestEmptyInputWritesNothing(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.json")
	gt := events.Collection{ev(0, events.PushEvent, "u1", "r1")}
	engine := NewEngineFromData(testingConf(), gt, events.Collection{})
	engine.Quiet = true
	rep, err := engine.Evaluate(outPath)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Nil(t, rep)
	_, err = os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestEvaluateWritesJSON(t *testing.T) {
	engine, err := NewEngine(testingConf(), testingGTPath, testingSimPath)
	require.NoError(t, err)
	assert.Equal(t, 12, engine.GroundTruth().Len())
	assert.Equal(t, 9, engine.Simulation().Len())
	engine.Quiet = true
	outPath := filepath.Join(t.TempDir(), "eval_output.json")
	rep, err := engine.Evaluate(outPath)
	require.NoError(t, err)
	assert.Empty(t, rep.RunID)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "eta")
	assert.Equal(t, len(rep.Measurements)+1, len(parsed))
	for _, f := range rep.Failures {
		assert.NotContains(t, parsed, string(f.Name))
	}
	uniq, ok := parsed[string(NameUserUniqueRepos)].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, uniq, "js_divergence")
	assert.Contains(t, uniq, "eta")
	assert.Contains(t, uniq, "metadata")
}

func TestEvaluatePrintsUnlessQuiet(t *testing.T) {
	engine, err := NewEngine(testingConf(), testingGTPath, testingSimPath)
	require.NoError(t, err)
	engine.Selection = Selection{}.SetScale(ScalePopulation).SetNodeType(NodeUser)
	var buff bytes.Buffer
	engine.Stdout = &buff
	_, err = engine.Evaluate("")
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buff.Bytes(), &parsed))
	assert.Contains(t, parsed, string(NameUserUniqueRepos))
	assert.NotContains(t, parsed, string(NameRepoGrowth))

	buff.Reset()
	engine.Quiet = true
	_, err = engine.Evaluate("")
	require.NoError(t, err)
	assert.Equal(t, 0, buff.Len())
}

func TestEvaluateWritesMsgpack(t *testing.T) {
	engine, err := NewEngine(testingConf(), testingGTPath, testingSimPath)
	require.NoError(t, err)
	engine.Quiet = true
	outPath := filepath.Join(t.TempDir(), "eval_output.msgpack")
	_, err = engine.Evaluate(outPath)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "eta")
}

func TestEvaluateArchivesRun(t *testing.T) {
	db, err := stats.NewDatabase(filepath.Join(t.TempDir(), "results.sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	defer db.Close()

	engine, err := NewEngine(testingConf(), testingGTPath, testingSimPath)
	require.NoError(t, err)
	engine.Quiet = true
	engine.SetArchive(db)
	rep, err := engine.Evaluate("")
	require.NoError(t, err)
	require.NotEmpty(t, rep.RunID)

	run, err := db.GetRun(rep.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, testingGTPath, run.GroundTruthPath)
	assert.Equal(t, len(rep.Measurements), run.NumMeasurements)
	assert.Equal(t, len(rep.Failures), run.NumFailures)

	scores, err := db.GetScores(rep.RunID, stats.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, len(rep.ScoreRecords(rep.RunID)), len(scores))
}

func TestNewEngineMissingFile(t *testing.T) {
	_, err := NewEngine(testingConf(), "nonexistent.csv", testingSimPath)
	assert.Error(t, err)
}
