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

package rackpdu

import (
	"fmt"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/render"
)

const HumidityPluginName = "dell_rackpdu_sensor_humidity"

// DellrPDU-MIB humidity tables
//
// rPDUSensorHumidityConfigTable .1.3.6.1.4.1.674.10903.200.2.200.150.3.3.1
//   .2 rPDUSensorHumidityConfigName
//   .3 rPDUSnsorHumCfgHumdityLowThresh
//   .4 rPDUSnsorHumCfgHumdityMinThresh
// rPDUSensorHumidityStatusTable .1.3.6.1.4.1.674.10903.200.2.200.150.3.2.1
//   .2 rPDUSensorHumidityStatusName
//   .4 rPDUSnsorHumStatRelativeHumdity
//   .5 rPDUSnsorHumStatusAlarmStatus

// NewHumidityPlugin returns the humidity sensor plugin.
func NewHumidityPlugin() *Plugin {
	return &Plugin{
		Name:        HumidityPluginName,
		ServiceName: "%s Humidity",
		Ruleset:     "humidity",
		Detect: Detection{
			SysDescrPrefix: SysDescrPrefix,
			Exists:         sensorBase + ".3",
		},
		Config:   Tree{Base: sensorBase + ".3.3.1", Columns: []string{"2", "3", "4"}},
		Status:   Tree{Base: sensorBase + ".3.2.1", Columns: []string{"2", "4", "5"}},
		Parse:    ParseHumidity,
		Discover: DiscoverHumidity,
		Check:    CheckHumidity,
	}
}

// ParseHumidity builds the section from config rows (name, low, min) and
// status rows (name, relative humidity, alarm status).
func ParseHumidity(config, status [][]string) (Section, error) {
	return parseSection(config, status, func(raw int) float64 {
		return float64(raw)
	})
}

// DiscoverHumidity yields one service per present humidity sensor.
func DiscoverHumidity(section Section) []check.Service {
	return discover(section)
}

// CheckHumidity checks the relative humidity of item. Without user lower
// levels the thresholds configured on the device are used as lower levels.
// The alarm status of the device is not taken into account.
func CheckHumidity(item string, params check.Params, section Section) []check.Entry {
	sensor, ok := section[item]
	if !ok {
		return []check.Entry{check.Result{State: check.UNKNOWN, Summary: fmt.Sprintf("Sensor %s not found.", item)}}
	}

	lower := sensor.Levels
	if params.LevelsLower != nil {
		lower = params.LevelsLower.Bounds()
	}

	return check.CheckLevels(sensor.Reading, check.LevelsOpts{
		Upper:      params.Levels.Bounds(),
		Lower:      lower,
		MetricName: "humidity",
		Render:     render.Percent,
	})
}
