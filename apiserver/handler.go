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
	"errors"
	"fmt"
	"net/http"

	"github.com/SocialSim/socialsim/eval"
	"github.com/SocialSim/socialsim/report"
	"github.com/SocialSim/socialsim/stats"
	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	dfltRunsLimit = 100
)

var errNoArchive = errors.New("results archive not configured")

func (api *apiServer) handleVersion(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, api.version)
}

func (api *apiServer) handleMeasurements(ctx *gin.Context) {
	sel, err := eval.ParseSelection(ctx.Query("scale"), ctx.Query("nodeType"))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	descs := api.engine.Registry().Select(sel)
	ans := make([]measurementInfo, len(descs))
	for i, desc := range descs {
		ans[i] = newMeasurementInfo(desc)
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (api *apiServer) handleMeasurement(ctx *gin.Context) {
	name := eval.MeasurementName(ctx.Param("name"))
	desc, ok := api.engine.Registry().Get(name)
	if !ok {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("%w: %s", eval.ErrUnknownMeasurement, name), http.StatusNotFound,
		)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, newMeasurementInfo(desc))
}

func (api *apiServer) handleEvaluate(ctx *gin.Context) {
	sel, err := eval.ParseSelection(ctx.Query("scale"), ctx.Query("nodeType"))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	engine := api.engine.Clone()
	engine.Selection = sel
	engine.Nodes = eval.NodeLists{
		Users: eval.ParseNodeList(ctx.Query("users")),
		Repos: eval.ParseNodeList(ctx.Query("repos")),
	}
	engine.Quiet = true
	engine.OnDone = nil
	rep, err := engine.Evaluate("")
	if errors.Is(err, eval.ErrEmptyInput) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusUnprocessableEntity)
		return

	} else if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	resp := evaluation{
		RunID:    rep.RunID,
		Results:  report.Convert(rep.AsMap()),
		Failures: rep.Failures,
	}
	if resp.Failures == nil {
		resp.Failures = []eval.Failure{}
	}
	uniresp.WriteJSONResponse(ctx.Writer, resp)
}

func (api *apiServer) handleRuns(ctx *gin.Context) {
	if api.archive == nil {
		uniresp.RespondWithErrorJSON(ctx, errNoArchive, http.StatusNotFound)
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", dfltRunsLimit)
	if !ok {
		return
	}
	runs, err := api.archive.GetRuns(limit)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, runs)
}

func (api *apiServer) handleRun(ctx *gin.Context) {
	if api.archive == nil {
		uniresp.RespondWithErrorJSON(ctx, errNoArchive, http.StatusNotFound)
		return
	}
	run, err := api.archive.GetRun(ctx.Param("runId"))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	if run == nil {
		uniresp.RespondWithErrorJSON(ctx, fmt.Errorf("run not found"), http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, run)
}

func (api *apiServer) handleRunScores(ctx *gin.Context) {
	if api.archive == nil {
		uniresp.RespondWithErrorJSON(ctx, errNoArchive, http.StatusNotFound)
		return
	}
	runID := ctx.Param("runId")
	run, err := api.archive.GetRun(runID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	if run == nil {
		uniresp.RespondWithErrorJSON(ctx, fmt.Errorf("run not found"), http.StatusNotFound)
		return
	}
	var filter stats.ListFilter
	if v, ok := ctx.GetQuery("measurement"); ok {
		filter = filter.SetMeasurement(v)
	}
	if v, ok := ctx.GetQuery("node"); ok {
		filter = filter.SetNode(v)
	}
	switch ctx.Query("computed") {
	case "":
	case "1", "true":
		filter = filter.SetComputed(true)
	case "0", "false":
		filter = filter.SetComputed(false)
	default:
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid value of 'computed'"), http.StatusBadRequest,
		)
		return
	}
	scores, err := api.archive.GetScores(runID, filter)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, scores)
}
