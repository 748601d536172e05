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

package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/middleware/logging"
	"github.com/comcast/pdumetrics/pool"
	"github.com/comcast/pdumetrics/rules"
	"github.com/comcast/pdumetrics/snmp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// UP means every selected plugin was fetched and parsed
	UP = 1.0
	// DOWN means the device could not be polled
	DOWN = 0.0
	// IGNORED means the device failed detection and is on the ignored list
	IGNORED = 2.0
)

var (
	// ErrUnknownItem is returned by Check for items the device does not report.
	ErrUnknownItem = errors.New("unknown item")
)

// Session is an SNMP session to one device. *snmp.Client implements it.
type Session interface {
	Detect(sysDescrOID, prefix, subtree string) error
	WalkTable(base string, columns []string) ([][]string, error)
	Close() error
}

// Dialer opens a session to target.
type Dialer func(ctx context.Context, target, community string) (Session, error)

// Exporter polls the sensor tables of one rack PDU and exports them using
// the prometheus metrics package.
type Exporter struct {
	ctx           context.Context
	mutex         sync.RWMutex
	host          string
	credProfile   string
	plugins       []*rackpdu.Plugin
	rules         rules.Rules
	dial          Dialer
	noTrend       bool
	deviceMetrics *map[string]*metrics
}

type Option func(*Exporter)

// WithDialer replaces the SNMP dialer.
func WithDialer(d Dialer) Option {
	return func(e *Exporter) {
		e.dial = d
	}
}

// WithRules sets the rules check parameters are taken from.
func WithRules(r rules.Rules) Option {
	return func(e *Exporter) {
		e.rules = r
	}
}

// WithoutTrend drops trend_compute from the check parameters so the exporter
// never records a trend sample. Used by on-demand checks that run next to the
// regular scrapes of the same device.
func WithoutTrend() Option {
	return func(e *Exporter) {
		e.noTrend = true
	}
}

// NewExporter returns an initialized Exporter for target polling plugins.
func NewExporter(ctx context.Context, target, profile string, plugins []*rackpdu.Plugin, opts ...Option) (*Exporter, error) {
	if target == "" {
		return nil, errors.New("target is empty")
	}
	if len(plugins) == 0 {
		return nil, errors.New("no plugins selected")
	}

	exp := &Exporter{
		ctx:           ctx,
		host:          target,
		credProfile:   profile,
		plugins:       plugins,
		rules:         rules.Rules{},
		dial:          dialSNMP,
		deviceMetrics: NewDeviceMetrics(),
	}
	for _, opt := range opts {
		opt(exp)
	}

	return exp, nil
}

func (e *Exporter) params(ruleset, item string) check.Params {
	params := e.rules.Params(ruleset, item)
	if e.noTrend {
		params.TrendCompute = nil
	}
	return params
}

func dialSNMP(ctx context.Context, target, community string) (Session, error) {
	return snmp.Dial(ctx, target, community)
}

// Describe describes all the metrics ever exported by the pdumetrics exporter. It
// implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect polls the device and delivers the sensor metrics. It implements
// prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // To protect metrics from concurrent collects.
	defer e.mutex.Unlock()

	e.resetMetrics()

	// perform scrape if target is not on ignored list
	if _, ok := common.IgnoredDevices.Get(e.host); !ok {
		e.scrape()
	} else {
		e.setUp(IGNORED)
	}

	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

func (e *Exporter) setUp(v float64) {
	var upMetric = (*e.deviceMetrics)["up"]
	(*upMetric)["up"].WithLabelValues().Set(v)
}

// sections fetches and parses the section of every plugin. Plugins whose
// detection fails are left out. When no plugin is detected the device is
// added to the ignored list and snmp.ErrNotDetected is returned.
func (e *Exporter) sections() (map[*rackpdu.Plugin]rackpdu.Section, error) {
	log := zap.L()
	traceID := logging.TraceIDFrom(e.ctx)

	tasks := make([]*pool.Task, 0, len(e.plugins))
	byName := make(map[string]*rackpdu.Plugin, len(e.plugins))
	for _, p := range e.plugins {
		byName[p.Name] = p
		tasks = append(tasks, pool.NewTask(p.Name, e.fetch(p)))
	}

	// every task runs its own session
	p := pool.NewPool(tasks, len(tasks))
	p.Run()

	var detectErr error
	sections := make(map[*rackpdu.Plugin]rackpdu.Section, len(tasks))
	for _, task := range p.Tasks {
		plugin := byName[task.Plugin]
		if task.Err != nil {
			if errors.Is(task.Err, snmp.ErrNotDetected) {
				log.Debug("plugin not detected on device", zap.String("target", e.host),
					zap.String("plugin", task.Plugin), zap.Error(task.Err), zap.String("trace_id", traceID))
				detectErr = task.Err
				continue
			}
			return nil, fmt.Errorf("fetch %s: %w", task.Plugin, task.Err)
		}

		section, err := plugin.Parse(task.Tables[0], task.Tables[1])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", task.Plugin, err)
		}
		sections[plugin] = section
	}

	if len(sections) == 0 && detectErr != nil {
		names := make([]string, 0, len(e.plugins))
		for _, p := range e.plugins {
			names = append(names, p.Name)
		}
		common.IgnoredDevices.Add(common.IgnoredDevice{
			Name:              e.host,
			Plugins:           names,
			CredentialProfile: e.credProfile,
			Reason:            detectErr.Error(),
		})
		log.Info("added host "+e.host+" to ignored list", zap.Error(detectErr), zap.String("trace_id", traceID))
		return nil, detectErr
	}

	return sections, nil
}

func (e *Exporter) scrape() {
	sections, err := e.sections()
	if err != nil {
		if errors.Is(err, snmp.ErrNotDetected) {
			e.setUp(IGNORED)
			return
		}
		zap.L().Error("error polling device", zap.String("target", e.host), zap.Error(err),
			zap.String("trace_id", logging.TraceIDFrom(e.ctx)))
		e.setUp(DOWN)
		return
	}

	for plugin, section := range sections {
		e.exportSection(plugin, section)
	}
	e.setUp(UP)
}

// Discover returns the services of every detected plugin keyed by plugin name.
func (e *Exporter) Discover() (map[string][]check.Service, error) {
	sections, err := e.sections()
	if err != nil {
		return nil, err
	}

	services := make(map[string][]check.Service, len(sections))
	for plugin, section := range sections {
		services[plugin.Name] = plugin.Discover(section)
	}
	return services, nil
}

// Check runs the check of item for the first plugin of the exporter. A check
// yielding nothing is reported as ErrUnknownItem.
func (e *Exporter) Check(item string) (check.Summary, error) {
	sections, err := e.sections()
	if err != nil {
		return check.Summary{}, err
	}

	plugin := e.plugins[0]
	section, ok := sections[plugin]
	if !ok {
		return check.Summary{}, fmt.Errorf("%w: %s not detected", snmp.ErrNotDetected, plugin.Name)
	}

	entries := plugin.Check(item, e.params(plugin.Ruleset, item), section)
	if len(entries) == 0 {
		return check.Summary{}, fmt.Errorf("%w: %s", ErrUnknownItem, plugin.Description(item))
	}
	return check.Summarize(entries), nil
}
