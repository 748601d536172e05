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

package check

import (
	"github.com/comcast/pdumetrics/render"
)

// LevelsOpts describes how a value is checked against upper and lower levels.
type LevelsOpts struct {
	Upper      *Levels
	Lower      *Levels
	MetricName string
	Label      string
	Render     render.Renderer
}

// EvaluateLevels returns the state of value and the annotation describing the
// breached bound. Upper levels are checked before lower levels, crit before warn.
func EvaluateLevels(value float64, upper, lower *Levels, r render.Renderer) (State, string) {
	if r == nil {
		r = render.Float
	}
	switch {
	case upper != nil && value >= upper.Crit:
		return CRIT, levelsText("at", upper, r)
	case upper != nil && value >= upper.Warn:
		return WARN, levelsText("at", upper, r)
	case lower != nil && value < lower.Crit:
		return CRIT, levelsText("below", lower, r)
	case lower != nil && value < lower.Warn:
		return WARN, levelsText("below", lower, r)
	}
	return OK, ""
}

func levelsText(kind string, l *Levels, r render.Renderer) string {
	return " (warn/crit " + kind + " " + r.Render(l.Warn) + "/" + r.Render(l.Crit) + ")"
}

// CheckLevels yields a Result for value followed by a Metric when a metric
// name is set. The metric records the upper levels only.
func CheckLevels(value float64, opts LevelsOpts) []Entry {
	r := opts.Render
	if r == nil {
		r = render.Float
	}

	state, annotation := EvaluateLevels(value, opts.Upper, opts.Lower, r)
	text := r.Render(value)
	if opts.Label != "" {
		text = opts.Label + ": " + text
	}

	entries := []Entry{Result{State: state, Summary: text + annotation}}
	if opts.MetricName != "" {
		entries = append(entries, Metric{Name: opts.MetricName, Value: value, Levels: opts.Upper})
	}
	return entries
}
