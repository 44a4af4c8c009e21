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

package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/eval"
	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/stats"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testingConf() *cnf.Conf {
	return &cnf.Conf{
		NumTopNodes:        10,
		NumWorkers:         2,
		CorsAllowedOrigins: []string{"http://localhost:3000"},
	}
}

func newTestingServer(t *testing.T, withArchive bool) *apiServer {
	gin.SetMode(gin.TestMode)
	conf := testingConf()
	engine, err := eval.NewEngine(conf, "../testdata/gt_events.csv", "../testdata/sim_events.csv")
	require.NoError(t, err)
	ans := &apiServer{
		conf:    conf,
		engine:  engine,
		version: cnf.NewVersionInfo("v0.3.1", "2025-02-01", "abcdef"),
	}
	if withArchive {
		db, err := stats.NewDatabase(filepath.Join(t.TempDir(), "results.sqlite"))
		require.NoError(t, err)
		require.NoError(t, db.Init())
		t.Cleanup(func() { db.Close() })
		ans.archive = db
		ans.engine.SetArchive(db)
	}
	return ans
}

func doRequest(t *testing.T, api *apiServer, method, url string, resp any) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, nil)
	w := httptest.NewRecorder()
	api.router().ServeHTTP(w, req)
	if resp != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	}
	return w
}

func TestVersion(t *testing.T) {
	api := newTestingServer(t, false)
	var ver cnf.VersionInfo
	w := doRequest(t, api, http.MethodGet, "/version", &ver)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.3.1", ver.Version)
}

func TestListMeasurements(t *testing.T) {
	api := newTestingServer(t, false)
	var items []measurementInfo
	w := doRequest(t, api, http.MethodGet, "/measurements", &items)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, len(items))
	assert.Equal(t, eval.NameUserUniqueRepos, items[0].Name)

	items = nil
	w = doRequest(t, api, http.MethodGet, "/measurements?scale=node&nodeType=repo", &items)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, len(items))

	w = doRequest(t, api, http.MethodGet, "/measurements?scale=global", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMeasurement(t *testing.T) {
	api := newTestingServer(t, false)
	var item measurementInfo
	w := doRequest(t, api, http.MethodGet, "/measurements/repo_popularity_topk", &item)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "top_k_repos(k=5000,event=WatchEvent)", item.Measurement)
	assert.Equal(t, map[string]string{"rbo": "rbo(p=0.95)"}, item.Metrics)
	assert.Equal(t, events.Filter{events.FieldEvent: {"WatchEvent"}}, item.Filters)

	w = doRequest(t, api, http.MethodGet, "/measurements/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateAndBrowseArchive(t *testing.T) {
	api := newTestingServer(t, true)
	var resp struct {
		RunID    string         `json:"runId"`
		Results  map[string]any `json:"results"`
		Failures []eval.Failure `json:"failures"`
	}
	w := doRequest(t, api, http.MethodGet, "/evaluate?scale=population", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp.RunID)
	assert.Contains(t, resp.Results, "eta")
	assert.NotContains(t, resp.Results, string(eval.NameRepoGrowth))
	assert.NotNil(t, resp.Failures)

	var runs []stats.RunRecord
	w = doRequest(t, api, http.MethodGet, "/runs", &runs)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, len(runs))
	assert.Equal(t, resp.RunID, runs[0].ID)

	var run stats.RunRecord
	w = doRequest(t, api, http.MethodGet, "/runs/"+resp.RunID, &run)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(resp.Failures), run.NumFailures)

	var scores []stats.ScoreRecord
	w = doRequest(
		t, api, http.MethodGet,
		"/runs/"+resp.RunID+"/scores?measurement=user_unique_repos", &scores)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, len(scores))
	for _, s := range scores {
		assert.Equal(t, "user_unique_repos", s.Measurement)
	}

	w = doRequest(t, api, http.MethodGet, "/runs/"+resp.RunID+"/scores?computed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(t, api, http.MethodGet, "/runs/nonexistent/scores", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, api, http.MethodGet, "/runs/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunsWithoutArchive(t *testing.T) {
	api := newTestingServer(t, false)
	w := doRequest(t, api, http.MethodGet, "/runs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp evaluation
	w = doRequest(t, api, http.MethodGet, "/evaluate?nodeType=user&scale=node&users=u1,u2", &resp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.RunID)
}

func TestEvaluateEmptyInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conf := testingConf()
	api := &apiServer{
		conf:   conf,
		engine: eval.NewEngineFromData(conf, events.Collection{}, events.Collection{}),
	}
	w := doRequest(t, api, http.MethodGet, "/evaluate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCORS(t *testing.T) {
	api := newTestingServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/measurements", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	api.router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("Origin", "http://example.com")
	w = httptest.NewRecorder()
	api.router().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
