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

package cnf

import (
	"encoding/json"
	"os"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltNumTopNodes            = 100
	dfltNumWorkers             = 1
	dfltOutputFile             = "eval_output.json"
	dfltListenAddress          = "localhost"
	dfltListenPort             = 8090
	dfltServerReadTimeoutSecs  = 30
	dfltServerWriteTimeoutSecs = 30
)

type Conf struct {
	srcPath string
	Logging logging.LoggingConf `json:"logging"`

	// NumTopNodes is the number of most active nodes evaluated
	// by node-level measurements if no explicit node list is provided.
	NumTopNodes int `json:"numTopNodes"`

	// NumWorkers limits the number of measurements evaluated concurrently.
	NumWorkers int `json:"numWorkers"`

	OutputFile string `json:"outputFile"`

	// ResultsDBPath is an optional path to an SQLite database archiving
	// evaluation runs. Empty value disables archiving.
	ResultsDBPath string `json:"resultsDbPath"`

	ListenAddress          string   `json:"listenAddress"`
	ListenPort             int      `json:"listenPort"`
	ServerReadTimeoutSecs  int      `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int      `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string `json:"corsAllowedOrigins"`
}

func (conf *Conf) SrcPath() string {
	return conf.srcPath
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.NumTopNodes <= 0 {
		conf.NumTopNodes = dfltNumTopNodes
		log.Warn().Msgf("numTopNodes not specified, using default: %d", dfltNumTopNodes)
	}
	if conf.NumWorkers <= 0 {
		conf.NumWorkers = dfltNumWorkers
		log.Warn().Msgf("numWorkers not specified, using default: %d", dfltNumWorkers)
	}
	if conf.OutputFile == "" {
		conf.OutputFile = dfltOutputFile
		log.Warn().Str("outputFile", dfltOutputFile).Msg("outputFile not specified, using default")
	}
	if conf.ListenAddress == "" {
		conf.ListenAddress = dfltListenAddress
		log.Warn().Str("address", dfltListenAddress).Msg("listenAddress not specified, using default")
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Msgf("listenPort not specified, using default: %d", dfltListenPort)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
}
