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

package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/comcast/pdumetrics/check"
	"github.com/stretchr/testify/assert"
)

const ruleFile = `
temperature:
  - item: "^Rack-A"
    levels: [30, 35]
    output_unit: f
  - item: "^Rack"
    levels: [40, 45]
    levels_lower: [fixed, [10, 5]]
    device_levels_handling: worst
  - trend_compute:
      period: 60
      trend_levels: [5, 10]
humidity:
  - item: ".*"
    levels_lower: [30, 20]
  - levels: [no_levels, null]
`

func Test_Params(t *testing.T) {
	r, err := Parse([]byte(ruleFile))
	if !assert.NoError(t, err) {
		return
	}

	tests := []struct {
		name     string
		ruleset  string
		item     string
		expected check.Params
	}{
		{
			name:    "FirstMatchWinsPerKey",
			ruleset: "temperature",
			item:    "Rack-A-Top",
			expected: check.Params{
				Levels:               check.Fixed(30, 35),
				LevelsLower:          check.Fixed(10, 5),
				OutputUnit:           "f",
				DeviceLevelsHandling: "worst",
				TrendCompute:         &check.TrendParams{Period: 60, TrendLevels: check.NewLevels(5, 10)},
			},
		},
		{
			name:    "SecondRule",
			ruleset: "temperature",
			item:    "Rack-B",
			expected: check.Params{
				Levels:               check.Fixed(40, 45),
				LevelsLower:          check.Fixed(10, 5),
				DeviceLevelsHandling: "worst",
				TrendCompute:         &check.TrendParams{Period: 60, TrendLevels: check.NewLevels(5, 10)},
			},
		},
		{
			name:    "CatchAll",
			ruleset: "temperature",
			item:    "Inlet",
			expected: check.Params{
				TrendCompute: &check.TrendParams{Period: 60, TrendLevels: check.NewLevels(5, 10)},
			},
		},
		{
			name:    "Humidity",
			ruleset: "humidity",
			item:    "Sensor-1",
			expected: check.Params{
				Levels:      check.NoLevels(),
				LevelsLower: check.Fixed(30, 20),
			},
		},
		{
			name:    "UnknownRuleset",
			ruleset: "voltage",
			item:    "Sensor-1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, r.Params(test.ruleset, test.item))
		})
	}
}

func Test_ParseErrors(t *testing.T) {
	_, err := Parse([]byte("temperature:\n  - item: \"[\"\n"))
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	_, err = Parse([]byte("humidity:\n  - levels: [1, 2, 3]\n"))
	assert.True(t, errors.Is(err, check.ErrInvalidLevels))

	_, err = Parse([]byte("humidity:\n  - levels: [guessed, [1, 2]]\n"))
	assert.True(t, errors.Is(err, check.ErrInvalidLevels))
}

func Test_Load(t *testing.T) {
	r, err := Load("")
	assert.NoError(t, err)
	assert.Empty(t, r)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(ruleFile), 0o600))
	r, err = Load(path)
	assert.NoError(t, err)
	assert.Len(t, r["temperature"], 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
