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
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/eval"
	"github.com/SocialSim/socialsim/stats"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// -----

type apiServer struct {
	conf    *cnf.Conf
	server  *http.Server
	engine  *eval.Engine
	archive *stats.Database
	version cnf.VersionInfo
}

func (api *apiServer) router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(corsMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	engine.GET("/version", api.handleVersion)
	engine.GET("/measurements", api.handleMeasurements)
	engine.GET("/measurements/:name", api.handleMeasurement)
	engine.GET("/evaluate", api.handleEvaluate)
	engine.GET("/runs", api.handleRuns)
	engine.GET("/runs/:runId", api.handleRun)
	engine.GET("/runs/:runId/scores", api.handleRunScores)
	return engine
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.Logging.Level.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      api.router(),
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down SocialSim HTTP API server")
	return api.server.Shutdown(ctx)
}

// -------------------------

// Run starts the HTTP API over already loaded events and blocks
// until ctx is cancelled. The archive is optional.
func Run(
	ctx context.Context,
	conf *cnf.Conf,
	engine *eval.Engine,
	archive *stats.Database,
	version cnf.VersionInfo,
) {

	server := &apiServer{
		conf:    conf,
		engine:  engine,
		archive: archive,
		version: version,
	}
	if archive != nil {
		server.engine.SetArchive(archive)
	}
	log.Info().
		Int("groundTruthSize", engine.GroundTruth().Len()).
		Int("simulationSize", engine.Simulation().Len()).
		Bool("archive", archive != nil).
		Msg("prepared evaluation data for API server")

	services := []service{server}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
