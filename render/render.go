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
	"strconv"
	"strings"
)

// Renderer turns a numeric value into display text.
type Renderer interface {
	Render(v float64) string
}

// RenderFunc adapts an ordinary function to the Renderer interface.
type RenderFunc func(float64) string

func (f RenderFunc) Render(v float64) string {
	return f(v)
}

// Percent renders a percentage with two decimals, e.g. 28.00%.
var Percent = RenderFunc(func(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
})

// Float renders a value with one decimal and no trailing zeros.
var Float = RenderFunc(trimmed)

func trimmed(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Timespan renders seconds as hours, minutes and seconds, skipping zero parts.
func Timespan(seconds float64) string {
	total := int64(seconds + 0.5)
	if total <= 0 {
		return "0 seconds"
	}

	var parts []string
	for _, u := range []struct {
		name string
		size int64
	}{{"hour", 3600}, {"minute", 60}, {"second", 1}} {
		n := total / u.size
		total %= u.size
		if n == 0 {
			continue
		}
		name := u.name
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, " ")
}
