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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/czcorpus/cnc-gokit/logging"
)

const (
	actionEvaluate     = "evaluate"
	actionServe        = "serve"
	actionMeasurements = "measurements"
	actionRuns         = "runs"
	actionVersion      = "version"
	actionHelp         = "help"

	exitErrorGeneralFailure = iota
	exitErrorInvalidArgs
	exitErrorFailedToLoadEvents
	exitErrorEvaluationFailed
	exitErrorFailedToOpenResultsDB
)

var (
	version   string
	buildDate string
	gitCommit string
)

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "SOCIALSIM - evaluation of simulated GitHub activity against ground truth\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\tevaluate simulation (default action)\n", actionEvaluate)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\trun HTTP API server\n", actionServe)
	fmt.Fprintf(os.Stderr, "\t%s\t\tlist available measurements\n", actionMeasurements)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tlist archived evaluation runs\n", actionRuns)
	fmt.Fprintf(os.Stderr, "\t%s\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\nUse `socialsim help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	var conf *cnf.Conf
	if confPath != "" {
		conf = cnf.LoadConfig(confPath)

	} else {
		conf = new(cnf.Conf)
	}
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

// inputArgs are flags shared by the actions working with event files
type inputArgs struct {
	simPath    string
	gtPath     string
	confPath   string
	resultsDB  string
	numWorkers int
}

func (args *inputArgs) register(cmd *flag.FlagSet) {
	cmd.StringVar(&args.simPath, "simulated_events", "", "path to a CSV file with simulated events")
	cmd.StringVar(&args.simPath, "s", "", "shorthand for -simulated_events")
	cmd.StringVar(&args.gtPath, "groundtruth_events", "", "path to a CSV file with ground truth events")
	cmd.StringVar(&args.gtPath, "g", "", "shorthand for -groundtruth_events")
	cmd.StringVar(&args.confPath, "config", "", "path to a JSON config file")
	cmd.StringVar(&args.resultsDB, "results_db", "", "SQLite database for archiving results (overrides config)")
	cmd.IntVar(&args.numWorkers, "workers", 0, "number of measurements evaluated concurrently (overrides config)")
}

func (args *inputArgs) isComplete() bool {
	return args.simPath != "" && args.gtPath != ""
}

// applyTo overrides config values by explicitly set flags
func (args *inputArgs) applyTo(conf *cnf.Conf) {
	if args.resultsDB != "" {
		conf.ResultsDBPath = args.resultsDB
	}
	if args.numWorkers > 0 {
		conf.NumWorkers = args.numWorkers
	}
}

func main() {
	version := cnf.NewVersionInfo(version, buildDate, gitCommit)

	var evalInputs inputArgs
	cmdEvaluate := flag.NewFlagSet(actionEvaluate, flag.ExitOnError)
	evalInputs.register(cmdEvaluate)
	evalOutput := cmdEvaluate.String("output_json_file", "", "path of the output file (.json or .msgpack, default from config)")
	cmdEvaluate.StringVar(evalOutput, "o", "", "shorthand for -output_json_file")
	evalScale := cmdEvaluate.String("scale", "", "evaluate only measurements of the scale (population, node)")
	evalNodeType := cmdEvaluate.String("node_type", "", "evaluate only measurements of the node type (user, repo)")
	evalUsers := cmdEvaluate.String("users", "", "comma separated list of users for node-level measurements")
	evalRepos := cmdEvaluate.String("repos", "", "comma separated list of repos for node-level measurements")
	evalQuiet := cmdEvaluate.Bool("quiet", false, "do not print results to stdout")
	cmdEvaluate.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s [%s] -s simulated.csv -g groundtruth.csv [options]\n\t",
			filepath.Base(os.Args[0]), actionEvaluate)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdEvaluate.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvaluate simulated events against ground truth events\n")
	}

	var serveInputs inputArgs
	cmdServe := flag.NewFlagSet(actionServe, flag.ExitOnError)
	serveInputs.register(cmdServe)
	cmdServe.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s -s simulated.csv -g groundtruth.csv [options]\n\t",
			filepath.Base(os.Args[0]), actionServe)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdServe.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nRun HTTP API for evaluation of the provided events\n")
	}

	cmdMeasurements := flag.NewFlagSet(actionMeasurements, flag.ExitOnError)
	measScale := cmdMeasurements.String("scale", "", "list only measurements of the scale (population, node)")
	measNodeType := cmdMeasurements.String("node_type", "", "list only measurements of the node type (user, repo)")
	cmdMeasurements.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options]\n\t",
			filepath.Base(os.Args[0]), actionMeasurements)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdMeasurements.PrintDefaults()
	}

	cmdRuns := flag.NewFlagSet(actionRuns, flag.ExitOnError)
	runsConfPath := cmdRuns.String("config", "", "path to a JSON config file")
	runsDB := cmdRuns.String("results_db", "", "SQLite database with archived results (overrides config)")
	runsLimit := cmdRuns.Int("limit", 20, "max. number of listed runs")
	runsScores := cmdRuns.String("scores", "", "if set, list scores of the run with the ID")
	cmdRuns.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s --results_db results.sqlite [options]\n\t",
			filepath.Base(os.Args[0]), actionRuns)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdRuns.PrintDefaults()
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)
	cmdHelp.Usage = func() {
		topLevelUsage()
	}

	action := actionEvaluate
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action = args[0]
		args = args[1:]
	}

	switch action {
	case actionHelp:
		cmdHelp.Parse(args)
		subj := cmdHelp.Arg(0)
		if subj == "" {
			topLevelUsage()
			return
		}
		switch subj {
		case actionEvaluate:
			cmdEvaluate.Usage()
		case actionServe:
			cmdServe.Usage()
		case actionMeasurements:
			cmdMeasurements.Usage()
		case actionRuns:
			cmdRuns.Usage()
		default:
			topLevelUsage()
		}
	case actionVersion:
		cmdVersion.Parse(args)
		runActionVersion(version)
	case actionEvaluate:
		cmdEvaluate.Parse(args)
		if !evalInputs.isComplete() {
			cmdEvaluate.Usage()
			return
		}
		conf := setup(evalInputs.confPath)
		evalInputs.applyTo(conf)
		runActionEvaluate(
			conf,
			evalInputs,
			evaluateOptions{
				outputPath: *evalOutput,
				scale:      *evalScale,
				nodeType:   *evalNodeType,
				users:      *evalUsers,
				repos:      *evalRepos,
				quiet:      *evalQuiet,
			},
		)
	case actionServe:
		cmdServe.Parse(args)
		if !serveInputs.isComplete() {
			cmdServe.Usage()
			return
		}
		conf := setup(serveInputs.confPath)
		serveInputs.applyTo(conf)
		runActionServe(conf, serveInputs, version)
	case actionMeasurements:
		cmdMeasurements.Parse(args)
		runActionMeasurements(*measScale, *measNodeType)
	case actionRuns:
		cmdRuns.Parse(args)
		conf := setup(*runsConfPath)
		if *runsDB != "" {
			conf.ResultsDBPath = *runsDB
		}
		runActionRuns(conf, *runsLimit, *runsScores)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information\n")
		os.Exit(exitErrorInvalidArgs)
	}
}
