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

package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newServerMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newServerMetric("up", "was the last scrape of pdumetrics successful.", nil, []string{}),
		}

		TemperatureMetrics = &metrics{
			"temperature": newServerMetric("pdu_sensor_temperature_celsius", "Current sensor temperature reading in Celsius", nil, []string{"sensor"}),
		}

		HumidityMetrics = &metrics{
			"humidity": newServerMetric("pdu_sensor_humidity_percent", "Current sensor relative humidity in percent", nil, []string{"sensor"}),
		}

		SensorMetrics = &metrics{
			"alarmStatus": newServerMetric("pdu_sensor_alarm_status", "Sensor alarm status reported by the device 1 = NOT PRESENT, 2 = LOW CRITICAL, 3 = LOW WARNING, 4 = NORMAL, 5 = HIGH WARNING, 6 = HIGH CRITICAL", nil, []string{"sensor", "type"}),
			"threshold":   newServerMetric("pdu_sensor_threshold", "Sensor threshold configured on the device", nil, []string{"sensor", "type", "level"}),
			"checkState":  newServerMetric("pdu_sensor_check_state", "Monitoring state of the sensor check 0 = OK, 1 = WARN, 2 = CRIT, 3 = UNKNOWN", nil, []string{"sensor", "type"}),
		}

		Metrics = &map[string]*metrics{
			"up":                 UpMetric,
			"temperatureMetrics": TemperatureMetrics,
			"humidityMetrics":    HumidityMetrics,
			"sensorMetrics":      SensorMetrics,
		}
	)

	return Metrics
}
