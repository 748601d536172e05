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
	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/dell/rackpdu"
)

// exportSection sets the reading, device and check state metrics of every
// sensor in section.
func (e *Exporter) exportSection(p *rackpdu.Plugin, section rackpdu.Section) {
	var (
		sensor = (*e.deviceMetrics)["sensorMetrics"]
		kind   = p.Ruleset
	)

	present := map[string]bool{}
	for _, svc := range p.Discover(section) {
		present[svc.Item] = true
	}

	for _, name := range section.Names() {
		s := section[name]
		(*sensor)["alarmStatus"].WithLabelValues(name, kind).Set(float64(s.Alarm))
		if s.Levels != nil {
			(*sensor)["threshold"].WithLabelValues(name, kind, "warn").Set(s.Levels.Warn)
			(*sensor)["threshold"].WithLabelValues(name, kind, "crit").Set(s.Levels.Crit)
		}

		// not present sensors report a reading of 0
		if !present[name] {
			continue
		}

		switch p.Name {
		case rackpdu.TemperaturePluginName:
			m := (*e.deviceMetrics)["temperatureMetrics"]
			(*m)["temperature"].WithLabelValues(name).Set(s.Reading)
		case rackpdu.HumidityPluginName:
			m := (*e.deviceMetrics)["humidityMetrics"]
			(*m)["humidity"].WithLabelValues(name).Set(s.Reading)
		}

		entries := p.Check(name, e.params(p.Ruleset, name), section)
		if len(entries) == 0 {
			continue
		}
		(*sensor)["checkState"].WithLabelValues(name, kind).Set(float64(check.Summarize(entries).State))
	}
}
