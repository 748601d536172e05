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

package render

import (
	"fmt"
)

// TempUnit is one of the supported temperature scales.
type TempUnit string

const (
	Celsius    TempUnit = "c"
	Fahrenheit TempUnit = "f"
	Kelvin     TempUnit = "k"
)

// ParseTempUnit returns the unit for c, f or k. An empty string means Celsius.
func ParseTempUnit(s string) (TempUnit, error) {
	switch TempUnit(s) {
	case "", Celsius:
		return Celsius, nil
	case Fahrenheit, Kelvin:
		return TempUnit(s), nil
	default:
		return Celsius, fmt.Errorf("unknown temperature unit %q", s)
	}
}

// Symbol is the display suffix for the unit.
func (u TempUnit) Symbol() string {
	switch u {
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "°C"
	}
}

// FromCelsius converts a Celsius value to the unit. Relative values are
// temperature differences and skip the offset.
func (u TempUnit) FromCelsius(v float64, relative bool) float64 {
	switch u {
	case Fahrenheit:
		if relative {
			return v * 1.8
		}
		return v*1.8 + 32
	case Kelvin:
		if relative {
			return v
		}
		return v + 273.15
	default:
		return v
	}
}

// ToCelsius converts a value given in the unit to Celsius.
func (u TempUnit) ToCelsius(v float64) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) / 1.8
	case Kelvin:
		return v - 273.15
	default:
		return v
	}
}

// Temperature renders Celsius values in the given output unit, e.g. "72.3 °F".
func Temperature(unit TempUnit) Renderer {
	return RenderFunc(func(v float64) string {
		return trimmed(unit.FromCelsius(v, false)) + " " + unit.Symbol()
	})
}

// TemperatureDelta renders a signed Celsius difference in the output unit,
// e.g. "+1.5 °C".
func TemperatureDelta(unit TempUnit) Renderer {
	return RenderFunc(func(v float64) string {
		s := trimmed(unit.FromCelsius(v, true))
		if s[0] != '-' {
			s = "+" + s
		}
		return s + " " + unit.Symbol()
	})
}
