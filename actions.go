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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/SocialSim/socialsim/apiserver"
	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/eval"
	"github.com/SocialSim/socialsim/stats"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

const (
	errColor  = color.FgHiRed
	nameColor = color.FgHiCyan
)

type evaluateOptions struct {
	outputPath string
	scale      string
	nodeType   string
	users      string
	repos      string
	quiet      bool
}

func checkInputFile(path string) {
	isFile, err := fs.IsFile(path)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToLoadEvents)
	}
	if !isFile {
		color.New(errColor).Fprintf(os.Stderr, "file %s not found\n", path)
		os.Exit(exitErrorFailedToLoadEvents)
	}
}

// openArchive opens the configured results database. With no database
// configured, nil is returned.
func openArchive(conf *cnf.Conf) *stats.Database {
	if conf.ResultsDBPath == "" {
		return nil
	}
	db, err := stats.NewDatabase(conf.ResultsDBPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenResultsDB)
	}
	err = db.Init()
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenResultsDB)
	}
	return db
}

func loadEngine(conf *cnf.Conf, inputs inputArgs) *eval.Engine {
	checkInputFile(inputs.simPath)
	checkInputFile(inputs.gtPath)
	engine, err := eval.NewEngine(conf, inputs.gtPath, inputs.simPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToLoadEvents)
	}
	return engine
}

func runActionVersion(ver cnf.VersionInfo) {
	fmt.Fprintln(os.Stderr, "SocialSim version: ", ver)
}

func runActionEvaluate(conf *cnf.Conf, inputs inputArgs, opts evaluateOptions) {
	sel, err := eval.ParseSelection(opts.scale, opts.nodeType)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	engine := loadEngine(conf, inputs)
	engine.Selection = sel
	engine.Nodes = eval.NodeLists{
		Users: eval.ParseNodeList(opts.users),
		Repos: eval.ParseNodeList(opts.repos),
	}
	engine.Quiet = opts.quiet
	if archive := openArchive(conf); archive != nil {
		defer archive.Close()
		engine.SetArchive(archive)
	}
	outputPath := opts.outputPath
	if outputPath == "" {
		outputPath = conf.OutputFile
	}

	bar := progressbar.Default(
		int64(len(engine.Registry().Select(sel))), "evaluating measurements")
	engine.OnDone = func(name eval.MeasurementName, err error) {
		bar.Add(1)
	}
	rep, err := engine.Evaluate(outputPath)
	bar.Finish()
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorEvaluationFailed)
	}
	for _, f := range rep.Failures {
		color.New(errColor).Fprintf(os.Stderr, "%s: %s\n", f.Name, f.Reason)
	}
	if rep.RunID != "" {
		fmt.Fprintf(os.Stderr, "archived as run %s\n", rep.RunID)
	}
}

func runActionServe(conf *cnf.Conf, inputs inputArgs, version cnf.VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	engine := loadEngine(conf, inputs)
	archive := openArchive(conf)
	if archive != nil {
		defer archive.Close()
	}
	apiserver.Run(ctx, conf, engine, archive, version)
}

func runActionMeasurements(scale, nodeType string) {
	sel, err := eval.ParseSelection(scale, nodeType)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCALE\tNODE\tMEASUREMENT\tMETRICS")
	for _, desc := range eval.DefaultRegistry().Select(sel) {
		metrics := make([]string, len(desc.Metrics))
		for i, m := range desc.Metrics {
			metrics[i] = m.Metric.Name()
		}
		fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%s\t%s\n",
			color.New(nameColor).Sprint(desc.Name),
			desc.Scale,
			desc.NodeType,
			desc.Measurement.Name(),
			strings.Join(metrics, ", "),
		)
	}
	tw.Flush()
}

func runActionRuns(conf *cnf.Conf, limit int, scoresOf string) {
	archive := openArchive(conf)
	if archive == nil {
		color.New(errColor).Fprintln(os.Stderr, "no results database specified")
		os.Exit(exitErrorInvalidArgs)
	}
	defer archive.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	defer tw.Flush()
	if scoresOf != "" {
		scores, err := archive.GetScores(scoresOf, stats.ListFilter{})
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorGeneralFailure)
		}
		fmt.Fprintln(tw, "MEASUREMENT\tNODE\tMETRIC\tVALUE")
		for _, s := range scores {
			value := "None"
			if s.Value != nil {
				value = fmt.Sprintf("%01.4f", *s.Value)

			} else if s.Detail != "" {
				value = s.Detail
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Measurement, s.Node, s.Metric, value)
		}
		return
	}

	runs, err := archive.GetRuns(limit)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorGeneralFailure)
	}
	log.Debug().Int("numRuns", len(runs)).Msg("fetched archived runs")
	fmt.Fprintln(tw, "ID\tDATETIME\tMEASUREMENTS\tFAILURES\tETA\tSIMULATION")
	for _, run := range runs {
		fmt.Fprintf(
			tw,
			"%s\t%s\t%d\t%d\t%s\t%s\n",
			color.New(nameColor).Sprint(run.ID),
			time.Unix(run.Datetime, 0).Format(time.DateTime),
			run.NumMeasurements,
			run.NumFailures,
			run.ETA,
			run.SimulationPath,
		)
	}
}
