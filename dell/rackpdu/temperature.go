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
	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/temperature"
)

const TemperaturePluginName = "dell_rackpdu_sensor_temp"

// DellrPDU-MIB temperature tables
//
// rPDUSensorTempConfigTable .1.3.6.1.4.1.674.10903.200.2.200.150.2.3.1
//   .2 rPDUSensorTempConfigName
//   .7 rPDUSnsorTempCfgTempHighThreshC
//   .6 rPDUSensorTempCfgTempMaxThreshC
// rPDUSensorTempStatusTable .1.3.6.1.4.1.674.10903.200.2.200.150.2.2.1
//   .2 rPDUSensorTempStatusName
//   .5 rPDUSensorTempStatusTempC (tenths of a degree)
//   .6 rPDUSensorTempStatusAlarmStatus

// NewTemperaturePlugin returns the temperature sensor plugin. Readings are
// handed to eval together with the device levels and alarm state.
func NewTemperaturePlugin(eval temperature.Evaluator) *Plugin {
	return &Plugin{
		Name:        TemperaturePluginName,
		ServiceName: "%s Temperature",
		Ruleset:     "temperature",
		Detect: Detection{
			SysDescrPrefix: SysDescrPrefix,
			Exists:         sensorBase + ".2",
		},
		Config:   Tree{Base: sensorBase + ".2.3.1", Columns: []string{"2", "7", "6"}},
		Status:   Tree{Base: sensorBase + ".2.2.1", Columns: []string{"2", "5", "6"}},
		Parse:    ParseTemperature,
		Discover: DiscoverTemperature,
		Check: func(item string, params check.Params, section Section) []check.Entry {
			return CheckTemperature(eval, item, params, section)
		},
	}
}

// ParseTemperature builds the section from config rows (name, high, max) and
// status rows (name, tenths of °C, alarm status). The high threshold becomes
// the warning and the max threshold the critical level.
func ParseTemperature(config, status [][]string) (Section, error) {
	return parseSection(config, status, func(raw int) float64 {
		return float64(raw) / 10.0
	})
}

// DiscoverTemperature yields one service per present temperature sensor.
func DiscoverTemperature(section Section) []check.Service {
	return discover(section)
}

// CheckTemperature checks the temperature of item. Unknown items yield nothing.
// The alarm status of the device is passed on as a lower bound for the state.
func CheckTemperature(eval temperature.Evaluator, item string, params check.Params, section Section) []check.Entry {
	sensor, ok := section[item]
	if !ok {
		return nil
	}

	status := sensor.Alarm.State()
	return eval.Evaluate(sensor.Reading, params, temperature.Device{
		UniqueName: TemperaturePluginName + "." + item,
		Levels:     sensor.Levels,
		Status:     &status,
		StatusName: item,
	})
}
