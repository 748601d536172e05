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
	"encoding/json"
	"errors"
	"testing"

	"github.com/comcast/pdumetrics/render"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func Test_Worst(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(OK, Worst())
	assert.Equal(WARN, Worst(OK, WARN))
	assert.Equal(UNKNOWN, Worst(WARN, UNKNOWN, OK))
	assert.Equal(CRIT, Worst(UNKNOWN, CRIT, WARN))
	assert.Equal(OK, Best())
	assert.Equal(WARN, Best(CRIT, WARN, UNKNOWN))
	assert.Equal(OK, Best(CRIT, OK))
}

func Test_CheckLevels(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		opts     LevelsOpts
		expected []Entry
	}{
		{
			name:     "NoLevels",
			value:    28,
			opts:     LevelsOpts{Render: render.Percent},
			expected: []Entry{Result{State: OK, Summary: "28.00%"}},
		},
		{
			name:  "UpperCrit",
			value: 40,
			opts:  LevelsOpts{Upper: NewLevels(35, 40), MetricName: "temp", Label: "Temperature"},
			expected: []Entry{
				Result{State: CRIT, Summary: "Temperature: 40 (warn/crit at 35/40)"},
				Metric{Name: "temp", Value: 40, Levels: NewLevels(35, 40)},
			},
		},
		{
			name:     "UpperWarn",
			value:    35,
			opts:     LevelsOpts{Upper: NewLevels(35, 40), Lower: NewLevels(10, 5)},
			expected: []Entry{Result{State: WARN, Summary: "35 (warn/crit at 35/40)"}},
		},
		{
			name:     "LowerCrit",
			value:    4.9,
			opts:     LevelsOpts{Upper: NewLevels(35, 40), Lower: NewLevels(10, 5)},
			expected: []Entry{Result{State: CRIT, Summary: "4.9 (warn/crit below 10/5)"}},
		},
		{
			name:     "LowerWarnBoundary",
			value:    5,
			opts:     LevelsOpts{Lower: NewLevels(10, 5)},
			expected: []Entry{Result{State: WARN, Summary: "5 (warn/crit below 10/5)"}},
		},
		{
			name:     "LowerOkBoundary",
			value:    10,
			opts:     LevelsOpts{Lower: NewLevels(10, 5)},
			expected: []Entry{Result{State: OK, Summary: "10"}},
		},
		{
			name:  "LowerLevelsNotInMetric",
			value: 28,
			opts:  LevelsOpts{Lower: NewLevels(30, 20), MetricName: "humidity", Render: render.Percent},
			expected: []Entry{
				Result{State: WARN, Summary: "28.00% (warn/crit below 30.00%/20.00%)"},
				Metric{Name: "humidity", Value: 28},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, CheckLevels(test.value, test.opts))
		})
	}
}

func Test_Summarize(t *testing.T) {
	assert := assert.New(t)

	sum := Summarize([]Entry{
		Metric{Name: "temp", Value: 24.4, Levels: NewLevels(60, 59)},
		Result{State: CRIT, Summary: "Temperature: 24.4 °C"},
		Result{State: CRIT, Notice: "State on device: Sensor-1"},
		Result{State: OK, Notice: "Configuration: only use device levels"},
	})

	assert.Equal(CRIT, sum.State)
	assert.Equal("Temperature: 24.4 °C(!!), State on device: Sensor-1(!!)", sum.Text)
	assert.Equal([]string{
		"Temperature: 24.4 °C(!!)",
		"State on device: Sensor-1(!!)",
		"Configuration: only use device levels",
	}, sum.Details)
	assert.Equal("temp=24.4;60;59", sum.Perfdata)
	assert.Equal("CRIT - Temperature: 24.4 °C(!!), State on device: Sensor-1(!!) | temp=24.4;60;59", sum.PluginOutput())

	empty := Summarize(nil)
	assert.Equal(OK, empty.State)
	assert.Equal("OK - ", empty.PluginOutput())
}

func Test_EntryJSON(t *testing.T) {
	b, err := json.Marshal([]Entry{
		Result{State: WARN, Summary: "28.00%"},
		Metric{Name: "humidity", Value: 28},
		Metric{Name: "temp", Value: 22.4, Levels: NewLevels(35, 40)},
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `[
		{"type": "result", "state": "WARN", "summary": "28.00%"},
		{"type": "metric", "name": "humidity", "value": 28},
		{"type": "metric", "name": "temp", "value": 22.4, "levels": [35, 40]}
	]`, string(b))
}

func Test_ThresholdSpecYAML(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected *ThresholdSpec
		bounds   *Levels
		err      bool
	}{
		{name: "Pair", doc: "[30, 35]", expected: Fixed(30, 35), bounds: NewLevels(30, 35)},
		{name: "Fixed", doc: "[fixed, [10, 5]]", expected: Fixed(10, 5), bounds: NewLevels(10, 5)},
		{name: "NoLevels", doc: "[no_levels, null]", expected: NoLevels()},
		{name: "Predictive", doc: "[predictive, {period: wday}]", expected: &ThresholdSpec{Kind: LevelsPredictive}},
		{name: "Unknown", doc: "[magic, [1, 2]]", err: true},
		{name: "Scalar", doc: "30", err: true},
		{name: "ThreeElements", doc: "[1, 2, 3]", err: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var spec ThresholdSpec
			err := yaml.Unmarshal([]byte(test.doc), &spec)
			if test.err {
				assert.True(t, errors.Is(err, ErrInvalidLevels))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, *test.expected, spec)
			assert.Equal(t, test.bounds, spec.Bounds())
		})
	}
}

func Test_ParamsMerge(t *testing.T) {
	first := Params{Levels: Fixed(30, 35), OutputUnit: "f"}
	second := Params{Levels: Fixed(40, 45), LevelsLower: NoLevels(), OutputUnit: "k", DeviceLevelsHandling: "worst"}

	merged := first.Merge(second)
	assert.Equal(t, Params{
		Levels:               Fixed(30, 35),
		LevelsLower:          NoLevels(),
		OutputUnit:           "f",
		DeviceLevelsHandling: "worst",
	}, merged)
}
