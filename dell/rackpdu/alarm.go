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

package rackpdu

import (
	"fmt"

	"github.com/comcast/pdumetrics/check"
)

// AlarmCode is the sensor alarm status reported by DellrPDU-MIB
// (rPDUSensorTempStatusAlarmStatus, rPDUSnsorHumStatusAlarmStatus).
type AlarmCode int

const (
	AlarmNotPresent   AlarmCode = 1
	AlarmLowCritical  AlarmCode = 2
	AlarmLowWarning   AlarmCode = 3
	AlarmNormal       AlarmCode = 4
	AlarmHighWarning  AlarmCode = 5
	AlarmHighCritical AlarmCode = 6
)

// SensorLevelStates maps the device alarm status to a monitoring state. Both
// the temperature and the humidity plugin read it.
var SensorLevelStates = map[AlarmCode]check.State{
	AlarmNotPresent:   check.CRIT,
	AlarmLowCritical:  check.CRIT,
	AlarmLowWarning:   check.WARN,
	AlarmNormal:       check.OK,
	AlarmHighWarning:  check.WARN,
	AlarmHighCritical: check.CRIT,
}

func (a AlarmCode) String() string {
	switch a {
	case AlarmNotPresent:
		return "not present"
	case AlarmLowCritical:
		return "low critical"
	case AlarmLowWarning:
		return "low warning"
	case AlarmNormal:
		return "normal"
	case AlarmHighWarning:
		return "high warning"
	case AlarmHighCritical:
		return "high critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// State returns the monitoring state for the alarm code, UNKNOWN for codes
// outside the MIB range.
func (a AlarmCode) State() check.State {
	if s, ok := SensorLevelStates[a]; ok {
		return s
	}
	return check.UNKNOWN
}
