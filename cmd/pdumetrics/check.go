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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/exporter"
	"github.com/comcast/pdumetrics/middleware/logging"
	"github.com/comcast/pdumetrics/rules"
	"go.uber.org/zap"
)

const (
	checkStateUnknown = check.UNKNOWN
	vaultLoginTimeout = 10 * time.Second
)

// waitForVault blocks until the renew loop logged in or the timeout passed.
func waitForVault(ctx context.Context) {
	if vault == nil {
		return
	}
	deadline := time.After(vaultLoginTimeout)
	for !vault.IsLoggedIn() {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			log.Warn("vault login did not complete in time", zap.Duration("timeout", vaultLoginTimeout))
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// runCheck checks one item and writes the plugin output line to w. It returns
// the process exit code, which is the check state.
func runCheck(ctx context.Context, registry rackpdu.Registry, ruleSet rules.Rules, w io.Writer) int {
	ctx = logging.WithTraceID(ctx)

	plugin, ok := registry.Lookup(*checkPlugin)
	if !ok {
		fmt.Fprintf(w, "%s - unknown plugin %q\n", checkStateUnknown, *checkPlugin)
		return int(checkStateUnknown)
	}

	waitForVault(ctx)

	exp, err := exporter.NewExporter(ctx, *checkTarget, *checkProfile, []*rackpdu.Plugin{plugin}, exporter.WithRules(ruleSet))
	if err != nil {
		fmt.Fprintf(w, "%s - %s\n", checkStateUnknown, err)
		return int(checkStateUnknown)
	}

	sum, err := exp.Check(*checkItem)
	switch {
	case errors.Is(err, exporter.ErrUnknownItem):
		fmt.Fprintf(w, "%s - item not found: %s\n", checkStateUnknown, plugin.Description(*checkItem))
		return int(checkStateUnknown)
	case err != nil:
		log.Error("check failed", zap.Error(err), zap.String("target", *checkTarget),
			zap.String("plugin", plugin.Name), zap.String("trace_id", logging.TraceIDFrom(ctx)))
		fmt.Fprintf(w, "%s - %s\n", checkStateUnknown, err)
		return int(checkStateUnknown)
	}

	fmt.Fprintln(w, sum.PluginOutput())
	for _, d := range sum.Details {
		log.Debug("check detail", zap.String("service", plugin.Description(*checkItem)), zap.String("detail", d))
	}
	return int(sum.State)
}

// runDiscover writes the discovered services as JSON to w.
func runDiscover(ctx context.Context, registry rackpdu.Registry, w io.Writer) int {
	ctx = logging.WithTraceID(ctx)

	plugins, err := registry.Select(*discoverPlugins)
	if err != nil {
		fmt.Fprintln(w, err)
		return 2
	}

	waitForVault(ctx)

	exp, err := exporter.NewExporter(ctx, *discoverTarget, *discoverProfile, plugins)
	if err != nil {
		fmt.Fprintln(w, err)
		return 2
	}

	services, err := exp.Discover()
	if err != nil {
		log.Error("discovery failed", zap.Error(err), zap.String("target", *discoverTarget),
			zap.String("trace_id", logging.TraceIDFrom(ctx)))
		return 1
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(services); err != nil {
		return 1
	}
	return 0
}
