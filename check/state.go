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
	"fmt"
)

// State is the monitoring state of a check result. The numeric values match
// the plugin exit codes used by nagios compatible monitoring cores.
type State int

const (
	OK      State = 0
	WARN    State = 1
	CRIT    State = 2
	UNKNOWN State = 3
)

func (s State) String() string {
	switch s {
	case OK:
		return "OK"
	case WARN:
		return "WARN"
	case CRIT:
		return "CRIT"
	case UNKNOWN:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// severity ranks states so that CRIT beats UNKNOWN beats WARN beats OK.
func (s State) severity() int {
	switch s {
	case OK:
		return 0
	case WARN:
		return 1
	case UNKNOWN:
		return 2
	default:
		return 3
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Worst returns the most severe of the given states, OK if none are given.
func Worst(states ...State) State {
	worst := OK
	for _, s := range states {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Best returns the least severe of the given states, OK if none are given.
func Best(states ...State) State {
	if len(states) == 0 {
		return OK
	}
	best := states[0]
	for _, s := range states[1:] {
		if s.severity() < best.severity() {
			best = s
		}
	}
	return best
}
