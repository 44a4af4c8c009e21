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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	err := os.WriteFile(
		path,
		[]byte(`{"numTopNodes": 20, "numWorkers": 4, "resultsDbPath": "/tmp/results.sqlite", "logging": {"level": "debug"}}`),
		0644,
	)
	require.NoError(t, err)
	conf := LoadConfig(path)
	assert.Equal(t, path, conf.SrcPath())
	assert.Equal(t, 20, conf.NumTopNodes)
	assert.Equal(t, 4, conf.NumWorkers)
	assert.Equal(t, "/tmp/results.sqlite", conf.ResultsDBPath)
	assert.True(t, conf.Logging.Level.IsDebugMode())
}

func TestValidateAndDefaults(t *testing.T) {
	conf := &Conf{NumWorkers: 3}
	ValidateAndDefaults(conf)
	assert.Equal(t, dfltNumTopNodes, conf.NumTopNodes)
	assert.Equal(t, 3, conf.NumWorkers)
	assert.Equal(t, "eval_output.json", conf.OutputFile)
	assert.Equal(t, "localhost", conf.ListenAddress)
	assert.Equal(t, 8090, conf.ListenPort)
	assert.Equal(t, 30, conf.ServerReadTimeoutSecs)
	assert.Equal(t, 30, conf.ServerWriteTimeoutSecs)
}
