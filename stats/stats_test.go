package stats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func newTestingDB(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "testing.sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

func addTestingRun(t *testing.T, db *Database, runID string, datetime int64) {
	err := db.AddRun(
		RunRecord{
			ID:              runID,
			Datetime:        datetime,
			GroundTruthPath: "gt.csv",
			SimulationPath:  "sim.csv",
			NumMeasurements: 2,
			NumFailures:     1,
			ETA:             "00h00m01s",
		},
		[]ScoreRecord{
			{Measurement: "user_unique_repos", Metric: "rmse", Value: ptr(0.5)},
			{Measurement: "user_unique_repos", Metric: "r2"},
			{Measurement: "repo_growth", Node: "r1", Metric: "rmse", Value: ptr(2)},
			{Measurement: "repo_growth", Node: "r2", Metric: "rmse"},
			{Measurement: "user_diffusion_delay", Metric: "ks_test", Detail: `{"pvalue":1,"statistic":0}`},
		},
	)
	require.NoError(t, err)
}

func TestInitIsRepeatable(t *testing.T) {
	db := newTestingDB(t)
	assert.NoError(t, db.Init())
}

func TestGetRunsNewestFirst(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	addTestingRun(t, db, "run-2", 2000)
	runs, err := db.GetRuns(0)
	assert.NoError(t, err)
	require.Equal(t, 2, len(runs))
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 1, runs[0].NumFailures)
	assert.Equal(t, "00h00m01s", runs[0].ETA)

	runs, err = db.GetRuns(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(runs))
}

func TestGetRun(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	run, err := db.GetRun("run-1")
	assert.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "sim.csv", run.SimulationPath)

	run, err = db.GetRun("nonexistent")
	assert.NoError(t, err)
	assert.Nil(t, run)
}

func TestDuplicateRunFails(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	err := db.AddRun(RunRecord{ID: "run-1", Datetime: 1}, nil)
	assert.Error(t, err)
}

func TestGetScoresNoFilters(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	addTestingRun(t, db, "run-2", 2000)
	recs, err := db.GetScores("run-1", ListFilter{})
	assert.NoError(t, err)
	assert.Equal(t, 5, len(recs))
	for _, v := range recs {
		assert.Equal(t, "run-1", v.RunID)
		assert.Equal(t, IdempotentID("run-1", v.Measurement, v.Node, v.Metric), v.ID)
	}
}

func TestGetScoresByMeasurementAndNode(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	recs, err := db.GetScores("run-1", ListFilter{}.SetMeasurement("repo_growth").SetNode("r1"))
	assert.NoError(t, err)
	require.Equal(t, 1, len(recs))
	require.NotNil(t, recs[0].Value)
	assert.Equal(t, 2.0, *recs[0].Value)
}

func TestGetScoresOnlyComputed(t *testing.T) {
	db := newTestingDB(t)
	addTestingRun(t, db, "run-1", 1000)
	recs, err := db.GetScores("run-1", ListFilter{}.SetComputed(true))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(recs))

	recs, err = db.GetScores("run-1", ListFilter{}.SetComputed(false))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(recs))
	for _, v := range recs {
		assert.Nil(t, v.Value)
		assert.Empty(t, v.Detail)
	}
}

func TestIdempotentID(t *testing.T) {
	assert.Equal(t, IdempotentID("r", "a", "b"), IdempotentID("r", "a", "b"))
	assert.NotEqual(t, IdempotentID("r", "a", "b"), IdempotentID("r", "ab", ""))
}
