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

// Package temperature evaluates temperature readings against user and
// device levels the same way for every sensor plugin.
package temperature

import (
	"time"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/render"
	"github.com/comcast/pdumetrics/valuestore"
)

const (
	// MetricName is the metric every temperature check emits, always in Celsius.
	MetricName = "temp"

	HandlingUser          = "usr"
	HandlingDevice        = "dev"
	HandlingPreferUser    = "usrdefault"
	HandlingPreferDevice  = "devdefault"
	HandlingBest          = "best"
	HandlingWorst         = "worst"
	defaultLevelsHandling = HandlingPreferUser
)

// Device holds what the sensor itself reports besides the reading.
type Device struct {
	// UniqueName keys the trend bookkeeping in the value store.
	UniqueName string
	// Unit of the reading and the device levels, Celsius if empty.
	Unit        render.TempUnit
	Levels      *check.Levels
	LevelsLower *check.Levels
	// Status is the state the device reports for the sensor, nil if unknown.
	// The overall check state never gets better than this.
	Status     *check.State
	StatusName string
}

// Evaluator checks a temperature reading.
type Evaluator interface {
	Evaluate(reading float64, params check.Params, dev Device) []check.Entry
}

// Checker is the default Evaluator. Store and Now are only needed for trends.
type Checker struct {
	Store valuestore.Store
	Now   func() time.Time
}

// NewChecker returns a Checker keeping trend state in store.
func NewChecker(store valuestore.Store) *Checker {
	return &Checker{Store: store, Now: time.Now}
}

type levelsCheck struct {
	metric check.Metric
	result check.Result
}

func evaluate(temp float64, upper, lower *check.Levels, r render.Renderer) levelsCheck {
	state, annotation := check.EvaluateLevels(temp, upper, lower, r)
	return levelsCheck{
		metric: check.Metric{Name: MetricName, Value: temp, Levels: upper},
		result: check.Result{State: state, Summary: "Temperature: " + r.Render(temp) + annotation},
	}
}

func (c *Checker) Evaluate(reading float64, params check.Params, dev Device) []check.Entry {
	devUnit := dev.Unit
	if devUnit == "" {
		devUnit = render.Celsius
	}
	inputUnit := devUnit
	if params.InputUnit != "" {
		if u, err := render.ParseTempUnit(params.InputUnit); err == nil {
			inputUnit = u
		}
	}
	outputUnit, err := render.ParseTempUnit(params.OutputUnit)
	if err != nil {
		outputUnit = render.Celsius
	}
	r := render.Temperature(outputUnit)

	temp := inputUnit.ToCelsius(reading)
	devUpper := toCelsius(dev.Levels, devUnit)
	devLower := toCelsius(dev.LevelsLower, devUnit)
	usrUpper := params.Levels.Bounds()
	usrLower := params.LevelsLower.Bounds()

	usr := evaluate(temp, usrUpper, usrLower, r)
	devc := evaluate(temp, devUpper, devLower, r)
	haveUsr := usrUpper != nil || usrLower != nil
	haveDev := devUpper != nil || devLower != nil

	var (
		fromDev bool
		config  string
	)

	handling := params.DeviceLevelsHandling
	if handling == "" {
		handling = defaultLevelsHandling
	}

	switch handling {
	case HandlingUser:
		config = "only use user levels"
	case HandlingDevice:
		fromDev, config = true, "only use device levels"
	case HandlingPreferDevice:
		switch {
		case haveDev:
			fromDev, config = true, "prefer device levels over user levels (used device levels)"
		case haveUsr:
			config = "prefer device levels over user levels (used user levels)"
		default:
			fromDev, config = true, "prefer device levels over user levels (no levels found)"
		}
	case HandlingWorst:
		config = "show most critical state"
		fromDev = check.Worst(usr.result.State, devc.result.State) != usr.result.State
	case HandlingBest:
		config = "show least critical state"
		fromDev = check.Best(usr.result.State, devc.result.State) != usr.result.State
	default:
		switch {
		case haveUsr:
			config = "prefer user levels over device levels (used user levels)"
		case haveDev:
			fromDev, config = true, "prefer user levels over device levels (used device levels)"
		default:
			config = "prefer user levels over device levels (no levels found)"
		}
	}

	used, lower := usr, usrLower
	if fromDev {
		used, lower = devc, devLower
	}

	entries := []check.Entry{used.metric, used.result}
	if dev.Status != nil {
		entries = append(entries, check.Result{State: *dev.Status, Notice: "State on device: " + dev.StatusName})
	}
	entries = append(entries, check.Result{State: check.OK, Notice: "Configuration: " + config})

	if params.TrendCompute != nil && c.Store != nil && dev.UniqueName != "" {
		entries = append(entries, c.trend(temp, params.TrendCompute, outputUnit, used.metric.Levels, lower, dev.UniqueName)...)
	}

	return entries
}

func toCelsius(l *check.Levels, unit render.TempUnit) *check.Levels {
	if l == nil {
		return nil
	}
	return check.NewLevels(unit.ToCelsius(l.Warn), unit.ToCelsius(l.Crit))
}
