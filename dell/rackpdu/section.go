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
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/comcast/pdumetrics/check"
)

var (
	ErrMalformedRow = errors.New("malformed row")
	// ErrSensorNotInStatus means the config table names a sensor the status
	// table does not have. The device data is inconsistent and the whole
	// section is rejected.
	ErrSensorNotInStatus = errors.New("sensor missing from status table")
	// ErrSensorNotInConfig is the reverse case, a status sensor without
	// device thresholds.
	ErrSensorNotInConfig = errors.New("sensor missing from config table")
)

// Sensor is one parsed sensor.
type Sensor struct {
	Reading float64
	Alarm   AlarmCode
	Levels  *check.Levels
}

// Section maps sensor names to their parsed data.
type Section map[string]*Sensor

// Names returns the sensor names in lexical order.
func (s Section) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseSection joins the status rows (name, reading, alarm) with the config
// rows (name, warn, crit). scale converts the raw integer reading.
func parseSection(config, status [][]string, scale func(int) float64) (Section, error) {
	section := make(Section, len(status))

	for _, row := range status {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: status row %q has %d columns, want 3", ErrMalformedRow, row, len(row))
		}
		reading, err := atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: reading of sensor %q - %v", ErrMalformedRow, row[0], err)
		}
		alarm, err := atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("%w: alarm status of sensor %q - %v", ErrMalformedRow, row[0], err)
		}
		section[row[0]] = &Sensor{Reading: scale(reading), Alarm: AlarmCode(alarm)}
	}

	for _, row := range config {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: config row %q has %d columns, want 3", ErrMalformedRow, row, len(row))
		}
		sensor, ok := section[row[0]]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrSensorNotInStatus, row[0])
		}
		warn, err := atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: warning threshold of sensor %q - %v", ErrMalformedRow, row[0], err)
		}
		crit, err := atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("%w: critical threshold of sensor %q - %v", ErrMalformedRow, row[0], err)
		}
		sensor.Levels = check.NewLevels(float64(warn), float64(crit))
	}

	for _, name := range section.Names() {
		if section[name].Levels == nil {
			return nil, fmt.Errorf("%w: %q", ErrSensorNotInConfig, name)
		}
	}

	return section, nil
}

// discover yields a service for every sensor that is present.
func discover(section Section) []check.Service {
	var services []check.Service
	for _, name := range section.Names() {
		if section[name].Alarm == AlarmNotPresent {
			continue
		}
		services = append(services, check.Service{Item: name})
	}
	return services
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
