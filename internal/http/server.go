// Licensed to the GlacierDB project under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The GlacierDB project licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package http exposes the lake coordinator's admin surface: compaction
// history and controls, warehouse topology, health probing and process
// metrics. It serves operators and probes, not the data path.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/http/healthz"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the admin routes on their own listener, apart from any data
// plane traffic.
type Server struct {
	engine   *gin.Engine
	srv      *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewServer(handlers *Handlers) *Server {
	params := paramtable.Get()
	if !params.HTTPCfg.DebugMode.GetAsBool() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET(HealthzPath, gin.WrapH(healthz.Handler()))
	engine.GET(MetricsPath, gin.WrapH(metricsHandler()))
	if params.HTTPCfg.EnablePprof.GetAsBool() {
		registerPprof(engine)
	}
	handlers.RegisterRoutesTo(engine)

	return &Server{engine: engine}
}

func metricsHandler() http.Handler {
	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	metrics.RegisterLakeCoord(registry)
	metrics.RegisterMetaMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func registerPprof(engine *gin.Engine) {
	group := engine.Group(PprofPath)
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	// Index serves the named profiles below its own path.
	group.GET("/:name", gin.WrapF(pprof.Index))
}

// Start begins serving on the configured port. When the admin server is
// disabled by config nothing is started and Start reports success.
func (s *Server) Start() error {
	params := paramtable.Get()
	if !params.HTTPCfg.Enabled.GetAsBool() {
		log.Info("http admin server disabled")
		return nil
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", params.HTTPCfg.Port.GetAsInt()))
	if err != nil {
		return err
	}
	s.listener = listener
	s.srv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Warn("http admin server serve failed", zap.Error(err))
		}
	}()
	log.Info("http admin server started", zap.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound listen address, empty before Start or when disabled.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.srv.Shutdown(ctx); err != nil {
				log.Warn("http admin server shutdown failed", zap.Error(err))
			}
		}
		s.wg.Wait()
		log.Info("http admin server stopped")
	})
}
