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
	"strconv"
	"strings"
)

// Entry is a single item yielded by a check function, either a Result or a Metric.
type Entry interface {
	entry()
}

// Result is a state with a message. Summary text is shown in the service
// output, Notice text only in the long output unless the state is not OK.
type Result struct {
	State   State
	Summary string
	Notice  string
}

func (Result) entry() {}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		State   State  `json:"state"`
		Summary string `json:"summary,omitempty"`
		Notice  string `json:"notice,omitempty"`
	}{"result", r.State, r.Summary, r.Notice})
}

// Metric is a named numeric value with optional upper levels for graphing.
type Metric struct {
	Name   string
	Value  float64
	Levels *Levels
}

func (Metric) entry() {}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string  `json:"type"`
		Name   string  `json:"name"`
		Value  float64 `json:"value"`
		Levels *Levels `json:"levels,omitempty"`
	}{"metric", m.Name, m.Value, m.Levels})
}

// perfdata renders the metric as a nagios performance data token.
func (m Metric) perfdata() string {
	s := m.Name + "=" + formatFloat(m.Value)
	if m.Levels != nil {
		s += ";" + formatFloat(m.Levels.Warn) + ";" + formatFloat(m.Levels.Crit)
	}
	return s
}

// Service is a discovered monitoring item.
type Service struct {
	Item string `json:"item"`
}

// Summary condenses check entries into what a monitoring core displays.
type Summary struct {
	State    State    `json:"state"`
	Text     string   `json:"summary"`
	Details  []string `json:"details,omitempty"`
	Metrics  []Metric `json:"metrics,omitempty"`
	Entries  []Entry  `json:"entries"`
	Perfdata string   `json:"-"`
}

// Summarize computes the overall state of the entries. Summaries are joined
// with ", "; notices are appended to the summary only when their state is not OK.
func Summarize(entries []Entry) Summary {
	var (
		states  []State
		texts   []string
		details []string
		perf    []string
		sum     = Summary{Entries: entries}
	)

	for _, e := range entries {
		switch v := e.(type) {
		case Result:
			states = append(states, v.State)
			text := v.Summary
			if text == "" {
				text = v.Notice
			}
			details = append(details, text+stateMarker(v.State))
			if v.Summary != "" || v.State != OK {
				texts = append(texts, text+stateMarker(v.State))
			}
		case Metric:
			sum.Metrics = append(sum.Metrics, v)
			perf = append(perf, v.perfdata())
		}
	}

	sum.State = Worst(states...)
	sum.Text = strings.Join(texts, ", ")
	sum.Details = details
	sum.Perfdata = strings.Join(perf, " ")
	return sum
}

// PluginOutput renders the summary as a single nagios plugin output line.
func (s Summary) PluginOutput() string {
	out := s.State.String() + " - " + s.Text
	if s.Perfdata != "" {
		out += " | " + s.Perfdata
	}
	return out
}

func stateMarker(s State) string {
	switch s {
	case WARN:
		return "(!)"
	case CRIT:
		return "(!!)"
	case UNKNOWN:
		return "(?)"
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
