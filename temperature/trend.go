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

package temperature

import (
	"errors"
	"math"
	"time"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/render"
	"github.com/comcast/pdumetrics/valuestore"
)

var (
	// errInitializing is returned while there is no previous sample to compare against.
	errInitializing = errors.New("initializing counter")
)

const defaultTrendPeriod = 30.0

func (c *Checker) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// trend yields the temperature change per period and, if configured, the
// time left until the crit level is reached at the current rate.
func (c *Checker) trend(temp float64, tp *check.TrendParams, unit render.TempUnit, upper, lower *check.Levels, unique string) []check.Entry {
	period := tp.Period
	if period <= 0 {
		period = defaultTrendPeriod
	}
	now := c.now()

	rate, err := c.rate("temp."+unique+".delta", now, temp)
	if errors.Is(err, errInitializing) {
		return nil
	} else if err != nil {
		return []check.Entry{check.Result{State: check.UNKNOWN, Summary: "Temperature trend: " + err.Error()}}
	}

	avg, err := c.average("temp."+unique+".trend", now, rate, period)
	if err != nil {
		return []check.Entry{check.Result{State: check.UNKNOWN, Summary: "Temperature trend: " + err.Error()}}
	}

	trend := avg * period
	var trendLower *check.Levels
	if tp.TrendLevelsLower != nil {
		trendLower = check.NewLevels(-tp.TrendLevelsLower.Warn, -tp.TrendLevelsLower.Crit)
	}

	r := render.TemperatureDelta(unit)
	state, annotation := check.EvaluateLevels(trend, tp.TrendLevels, trendLower, r)
	entries := []check.Entry{check.Result{
		State:   state,
		Summary: "Temperature trend: " + r.Render(trend) + " per " + render.Timespan(period*60) + annotation,
	}}

	if tp.TrendTimeleft == nil {
		return entries
	}

	var minutesLeft float64
	switch {
	case avg > 0 && upper != nil:
		minutesLeft = (upper.Crit - temp) / avg
	case avg < 0 && lower != nil:
		minutesLeft = (lower.Crit - temp) / avg
	default:
		return entries
	}
	if minutesLeft < 0 {
		minutesLeft = 0
	}

	minutes := render.RenderFunc(func(v float64) string { return render.Timespan(v * 60) })
	// reaching the limit already counts as breached
	l := tp.TrendTimeleft
	switch {
	case minutesLeft <= l.Crit:
		state = check.CRIT
	case minutesLeft <= l.Warn:
		state = check.WARN
	default:
		state = check.OK
	}
	annotation = ""
	if state != check.OK {
		annotation = " (warn/crit below " + minutes.Render(l.Warn) + "/" + minutes.Render(l.Crit) + ")"
	}
	entries = append(entries, check.Result{
		State:   state,
		Summary: "Time until temperature limit reached: " + minutes.Render(minutesLeft) + annotation,
	})
	return entries
}

// rate returns the change per minute since the previous sample stored under key.
func (c *Checker) rate(key string, now time.Time, value float64) (float64, error) {
	prev, err := valuestore.GetSample(c.Store, key)
	if serr := valuestore.SetSample(c.Store, key, valuestore.Sample{Time: now, Value: value}); serr != nil {
		return 0, serr
	}
	if errors.Is(err, valuestore.ErrNotFound) {
		return 0, errInitializing
	} else if err != nil {
		return 0, err
	}

	elapsed := now.Sub(prev.Time).Minutes()
	if elapsed <= 0 {
		return 0, errInitializing
	}
	return (value - prev.Value) / elapsed, nil
}

// average keeps an exponentially weighted average of value stored under key,
// where samples older than period minutes have less than half the weight.
func (c *Checker) average(key string, now time.Time, value, period float64) (float64, error) {
	prev, err := valuestore.GetSample(c.Store, key)
	avg := value
	if err == nil {
		elapsed := math.Max(now.Sub(prev.Time).Minutes(), 0)
		weight := math.Pow(0.5, elapsed/period)
		avg = prev.Value*weight + value*(1-weight)
	} else if !errors.Is(err, valuestore.ErrNotFound) {
		return 0, err
	}

	if err := valuestore.SetSample(c.Store, key, valuestore.Sample{Time: now, Value: avg}); err != nil {
		return 0, err
	}
	return avg, nil
}
