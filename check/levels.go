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
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidLevels = errors.New("invalid levels")
)

// Levels is a warn/crit threshold pair.
type Levels struct {
	Warn float64
	Crit float64
}

// NewLevels returns a pointer to the warn/crit pair.
func NewLevels(warn, crit float64) *Levels {
	return &Levels{Warn: warn, Crit: crit}
}

func (l Levels) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{l.Warn, l.Crit})
}

// UnmarshalYAML accepts a two element sequence [warn, crit].
func (l *Levels) UnmarshalYAML(node *yaml.Node) error {
	var pair []float64
	if err := node.Decode(&pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("%w: expected [warn, crit] at line %d", ErrInvalidLevels, node.Line)
	}
	l.Warn, l.Crit = pair[0], pair[1]
	return nil
}

// LevelsKind tells where a threshold pair comes from.
type LevelsKind string

const (
	LevelsFixed      LevelsKind = "fixed"
	LevelsNone       LevelsKind = "no_levels"
	LevelsPredictive LevelsKind = "predictive"
)

// ThresholdSpec is a user supplied bound. Only fixed levels carry a literal pair;
// predictive levels are computed by the monitoring core and are treated as
// absent here.
type ThresholdSpec struct {
	Kind   LevelsKind
	Levels Levels
}

// Fixed returns a literal threshold pair.
func Fixed(warn, crit float64) *ThresholdSpec {
	return &ThresholdSpec{Kind: LevelsFixed, Levels: Levels{Warn: warn, Crit: crit}}
}

// NoLevels returns a spec that explicitly disables the bound.
func NoLevels() *ThresholdSpec {
	return &ThresholdSpec{Kind: LevelsNone}
}

// Bounds returns the literal pair or nil if the spec does not define one.
func (t *ThresholdSpec) Bounds() *Levels {
	if t == nil || t.Kind != LevelsFixed {
		return nil
	}
	l := t.Levels
	return &l
}

// UnmarshalYAML accepts [warn, crit], [fixed, [warn, crit]], [no_levels, null]
// and [predictive, {...}].
func (t *ThresholdSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: expected a two element sequence at line %d", ErrInvalidLevels, node.Line)
	}

	head := node.Content[0]
	if head.Kind != yaml.ScalarNode || head.ShortTag() != "!!str" {
		t.Kind = LevelsFixed
		return t.Levels.UnmarshalYAML(node)
	}

	switch LevelsKind(head.Value) {
	case LevelsFixed:
		t.Kind = LevelsFixed
		return t.Levels.UnmarshalYAML(node.Content[1])
	case LevelsNone, LevelsPredictive:
		t.Kind = LevelsKind(head.Value)
		return nil
	default:
		return fmt.Errorf("%w: unknown levels type %q at line %d", ErrInvalidLevels, head.Value, head.Line)
	}
}

func (t ThresholdSpec) MarshalJSON() ([]byte, error) {
	if t.Kind == LevelsFixed {
		return json.Marshal([]interface{}{t.Kind, t.Levels})
	}
	return json.Marshal([]interface{}{t.Kind, nil})
}

// TrendParams configures temperature trend computation. Period and timeleft
// levels are in minutes, trend levels in degrees per period.
type TrendParams struct {
	Period           float64 `yaml:"period" json:"period"`
	TrendLevels      *Levels `yaml:"trend_levels,omitempty" json:"trend_levels,omitempty"`
	TrendLevelsLower *Levels `yaml:"trend_levels_lower,omitempty" json:"trend_levels_lower,omitempty"`
	TrendTimeleft    *Levels `yaml:"trend_timeleft,omitempty" json:"trend_timeleft,omitempty"`
}

// Params are the user configurable check parameters. Humidity only reads the
// levels; the remaining keys belong to the temperature evaluator.
type Params struct {
	Levels               *ThresholdSpec `yaml:"levels,omitempty" json:"levels,omitempty"`
	LevelsLower          *ThresholdSpec `yaml:"levels_lower,omitempty" json:"levels_lower,omitempty"`
	OutputUnit           string         `yaml:"output_unit,omitempty" json:"output_unit,omitempty"`
	InputUnit            string         `yaml:"input_unit,omitempty" json:"input_unit,omitempty"`
	DeviceLevelsHandling string         `yaml:"device_levels_handling,omitempty" json:"device_levels_handling,omitempty"`
	TrendCompute         *TrendParams   `yaml:"trend_compute,omitempty" json:"trend_compute,omitempty"`
}

// Merge fills every unset key of p from o and returns the result.
func (p Params) Merge(o Params) Params {
	if p.Levels == nil {
		p.Levels = o.Levels
	}
	if p.LevelsLower == nil {
		p.LevelsLower = o.LevelsLower
	}
	if p.OutputUnit == "" {
		p.OutputUnit = o.OutputUnit
	}
	if p.InputUnit == "" {
		p.InputUnit = o.InputUnit
	}
	if p.DeviceLevelsHandling == "" {
		p.DeviceLevelsHandling = o.DeviceLevelsHandling
	}
	if p.TrendCompute == nil {
		p.TrendCompute = o.TrendCompute
	}
	return p
}
