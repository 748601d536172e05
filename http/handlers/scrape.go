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

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/exporter"
	"github.com/comcast/pdumetrics/middleware/logging"
	"github.com/comcast/pdumetrics/rules"
	"github.com/comcast/pdumetrics/snmp"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScrapeConfig holds configuration for scrape handlers
type ScrapeConfig struct {
	Registry rackpdu.Registry
	Rules    rules.Rules
	// Dialer replaces the SNMP dialer of every exporter when set
	Dialer exporter.Dialer
}

type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

// newExporter builds the exporter for the target, credential_profile and
// plugins query parameters of r. An empty plugins list selects every plugin.
func newExporter(r *http.Request, cfg *ScrapeConfig, plugins []*rackpdu.Plugin, extra ...exporter.Option) (*exporter.Exporter, error) {
	query := r.URL.Query()

	target := query.Get("target")
	if len(query["target"]) != 1 || target == "" {
		return nil, &requestError{http.StatusBadRequest, "'target' parameter not set correctly"}
	}

	if plugins == nil {
		var err error
		plugins, err = cfg.Registry.Select(query.Get("plugins"))
		if err != nil {
			return nil, &requestError{http.StatusBadRequest, err.Error()}
		}
	}

	// optional query param is used to tell us which credential profile to use when retrieving that hosts community
	credProf := query.Get("credential_profile")

	opts := []exporter.Option{exporter.WithRules(cfg.Rules)}
	if cfg.Dialer != nil {
		opts = append(opts, exporter.WithDialer(cfg.Dialer))
	}
	opts = append(opts, extra...)

	exp, err := exporter.NewExporter(r.Context(), target, credProf, plugins, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pdu exporter - %w", err)
	}
	return exp, nil
}

func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.status
	case errors.Is(err, exporter.ErrUnknownItem), errors.Is(err, snmp.ErrNotDetected):
		status = http.StatusNotFound
	}

	zap.L().Error("request failed", zap.Error(err), zap.Int("status", status),
		zap.String("path", r.URL.Path), zap.String("trace_id", logging.TraceIDFrom(r.Context())))
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	resp, err := json.Marshal(v)
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

// ScrapeHandler handles GET /scrape requests
func ScrapeHandler(cfg *ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := newExporter(r, cfg, nil)
		if err != nil {
			httpError(w, r, err)
			return
		}

		zap.L().Info("started scrape",
			zap.String("target", r.URL.Query().Get("target")),
			zap.String("credential_profile", r.URL.Query().Get("credential_profile")),
			zap.String("trace_id", logging.TraceIDFrom(r.Context())))

		registry := prometheus.NewRegistry()
		registry.MustRegister(exp)
		// Delegate http serving to Prometheus client library, which will call collector.Collect.
		h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		h.ServeHTTP(w, r)
	}
}

type discoverResponse struct {
	Target   string                     `json:"target"`
	Services map[string][]serviceOutput `json:"services"`
}

type serviceOutput struct {
	check.Service
	Description string `json:"description"`
}

// DiscoverHandler handles GET /discover requests. It lists the services of
// every detected plugin.
func DiscoverHandler(cfg *ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := newExporter(r, cfg, nil)
		if err != nil {
			httpError(w, r, err)
			return
		}

		found, err := exp.Discover()
		if err != nil {
			httpError(w, r, err)
			return
		}

		resp := discoverResponse{Target: r.URL.Query().Get("target"), Services: make(map[string][]serviceOutput, len(found))}
		for name, services := range found {
			plugin, _ := cfg.Registry.Lookup(name)
			out := make([]serviceOutput, 0, len(services))
			for _, s := range services {
				out = append(out, serviceOutput{Service: s, Description: plugin.Description(s.Item)})
			}
			resp.Services[name] = out
		}
		writeJSON(w, r, resp)
	}
}

type checkResponse struct {
	Target  string `json:"target"`
	Plugin  string `json:"plugin"`
	Service string `json:"service"`
	Output  string `json:"output"`
	check.Summary
}

// CheckHandler handles GET /check requests running the check of one item.
func CheckHandler(cfg *ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		item := query.Get("item")
		if item == "" {
			httpError(w, r, &requestError{http.StatusBadRequest, "'item' parameter not set"})
			return
		}
		plugin, ok := cfg.Registry.Lookup(query.Get("plugin"))
		if !ok {
			httpError(w, r, &requestError{http.StatusBadRequest, fmt.Sprintf("unknown plugin %q", query.Get("plugin"))})
			return
		}

		// the temperature trend is sampled by /scrape only
		exp, err := newExporter(r, cfg, []*rackpdu.Plugin{plugin}, exporter.WithoutTrend())
		if err != nil {
			httpError(w, r, err)
			return
		}

		sum, err := exp.Check(item)
		if err != nil {
			httpError(w, r, err)
			return
		}

		writeJSON(w, r, checkResponse{
			Target:  query.Get("target"),
			Plugin:  plugin.Name,
			Service: plugin.Description(item),
			Output:  sum.PluginOutput(),
			Summary: sum,
		})
	}
}
