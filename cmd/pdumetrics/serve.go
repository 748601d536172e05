/*
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comcast/pdumetrics/buildinfo"
	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/http/handlers"
	"github.com/comcast/pdumetrics/logger"
	"github.com/comcast/pdumetrics/middleware/logging"
	"github.com/comcast/pdumetrics/middleware/muxprom"
	"github.com/comcast/pdumetrics/rules"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newMux(registry rackpdu.Registry, ruleSet rules.Rules) *http.ServeMux {
	scrapeConfig := &handlers.ScrapeConfig{
		Registry: registry,
		Rules:    ruleSet,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = buildinfo.JSON(w)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /scrape", handlers.ScrapeHandler(scrapeConfig))
	mux.HandleFunc("GET /discover", handlers.DiscoverHandler(scrapeConfig))
	mux.HandleFunc("GET /check", handlers.CheckHandler(scrapeConfig))

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, indexAppData{BuildInfo: buildinfo.Info, Plugins: registry.Names()})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	tmplIgnored := template.Must(template.New("ignored").Parse(ignoredTmpl))
	mux.HandleFunc("GET /ignored", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "json" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(common.IgnoredDevices.List())
			return
		}
		err := tmplIgnored.Execute(w, common.IgnoredDevices.List())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("POST /ignored/test-conn", common.TestConn(common.IgnoredDevices, redetect(registry, ruleSet)))
	mux.HandleFunc("POST /ignored/remove", common.RemoveHost(common.IgnoredDevices))

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	return mux
}

// serve runs the HTTP exporter until a termination signal arrives.
func serve(cancel context.CancelFunc, registry rackpdu.Registry, ruleSet rules.Rules) {
	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(newMux(registry, ruleSet)))

	srv := &http.Server{
		Addr:    ":" + *exporterPort,
		Handler: wrappedmux,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+*exporterPort)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started "+app+" service", zap.String("port", *exporterPort), zap.Strings("plugins", registry.Names()))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")

		shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}

		// stops the vault token watcher, which revokes the token
		cancel()
	}()

	wg.Wait()
}
