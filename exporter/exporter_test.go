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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/rules"
	"github.com/comcast/pdumetrics/snmp"
	"github.com/comcast/pdumetrics/temperature"
	"github.com/comcast/pdumetrics/valuestore"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

const (
	tempBase     = ".1.3.6.1.4.1.674.10903.200.2.200.150.2"
	humidityBase = ".1.3.6.1.4.1.674.10903.200.2.200.150.3"

	upExpected = `
        # HELP up was the last scrape of pdumetrics successful.
        # TYPE up gauge
        up %d
	`
	sensorsExpected = `
        # HELP pdu_sensor_temperature_celsius Current sensor temperature reading in Celsius
        # TYPE pdu_sensor_temperature_celsius gauge
        pdu_sensor_temperature_celsius{sensor="Sensor-1"} 22.4
        # HELP pdu_sensor_humidity_percent Current sensor relative humidity in percent
        # TYPE pdu_sensor_humidity_percent gauge
        pdu_sensor_humidity_percent{sensor="Sensor-1"} 28
        # HELP pdu_sensor_check_state Monitoring state of the sensor check 0 = OK, 1 = WARN, 2 = CRIT, 3 = UNKNOWN
        # TYPE pdu_sensor_check_state gauge
        pdu_sensor_check_state{sensor="Sensor-1",type="humidity"} 1
        pdu_sensor_check_state{sensor="Sensor-1",type="temperature"} 0
        # HELP pdu_sensor_threshold Sensor threshold configured on the device
        # TYPE pdu_sensor_threshold gauge
        pdu_sensor_threshold{level="crit",sensor="Sensor-1",type="humidity"} 0
        pdu_sensor_threshold{level="crit",sensor="Sensor-1",type="temperature"} 40
        pdu_sensor_threshold{level="crit",sensor="Sensor-2",type="temperature"} 40
        pdu_sensor_threshold{level="warn",sensor="Sensor-1",type="humidity"} 10
        pdu_sensor_threshold{level="warn",sensor="Sensor-1",type="temperature"} 35
        pdu_sensor_threshold{level="warn",sensor="Sensor-2",type="temperature"} 35
	`
)

type fakeSession struct {
	detected map[string]bool
	tables   map[string][][]string
	walkErr  error
	closed   *int
}

func (f *fakeSession) Detect(_, prefix, subtree string) error {
	if prefix != "DELL Web/SNMP" || !f.detected[subtree] {
		return fmt.Errorf("%w: %s", snmp.ErrNotDetected, subtree)
	}
	return nil
}

func (f *fakeSession) WalkTable(base string, _ []string) ([][]string, error) {
	if f.walkErr != nil {
		return nil, f.walkErr
	}
	return f.tables[base], nil
}

func (f *fakeSession) Close() error {
	if f.closed != nil {
		*f.closed++
	}
	return nil
}

func pduSession() *fakeSession {
	return &fakeSession{
		detected: map[string]bool{tempBase: true, humidityBase: true},
		tables: map[string][][]string{
			tempBase + ".3.1":     {{"Sensor-1", "35", "40"}, {"Sensor-2", "35", "40"}},
			tempBase + ".2.1":     {{"Sensor-1", "224", "4"}, {"Sensor-2", "0", "1"}},
			humidityBase + ".3.1": {{"Sensor-1", "10", "0"}},
			humidityBase + ".2.1": {{"Sensor-1", "28", "4"}},
		},
	}
}

func dialer(s *fakeSession, err error) Dialer {
	return func(_ context.Context, _, _ string) (Session, error) {
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func allPlugins(t *testing.T) []*rackpdu.Plugin {
	t.Helper()
	plugins, err := rackpdu.NewRegistry(temperature.NewChecker(nil)).Select("")
	if err != nil {
		t.Fatal(err)
	}
	return plugins
}

func Test_Exporter_Metrics(t *testing.T) {
	assert := assert.New(t)
	closed := 0
	s := pduSession()
	s.closed = &closed

	r, err := rules.Parse([]byte("humidity:\n  - levels: [20, 30]\n"))
	assert.NoError(err)

	exp, err := NewExporter(context.Background(), "pdu-metrics", "", allPlugins(t), WithDialer(dialer(s, nil)), WithRules(r))
	if !assert.NoError(err) {
		return
	}

	assert.NoError(testutil.CollectAndCompare(exp, strings.NewReader(fmt.Sprintf(upExpected, 1)), "up"))
	assert.NoError(testutil.CollectAndCompare(exp, strings.NewReader(sensorsExpected),
		"pdu_sensor_temperature_celsius", "pdu_sensor_humidity_percent", "pdu_sensor_check_state", "pdu_sensor_threshold"))
	assert.Equal(4, closed)
}

func Test_Exporter_NotDetected(t *testing.T) {
	assert := assert.New(t)
	defer common.IgnoredDevices.Remove("pdu-other-vendor")

	s := &fakeSession{}
	exp, err := NewExporter(context.Background(), "pdu-other-vendor", "", allPlugins(t), WithDialer(dialer(s, nil)))
	if !assert.NoError(err) {
		return
	}

	assert.NoError(testutil.CollectAndCompare(exp, strings.NewReader(fmt.Sprintf(upExpected, 2)), "up"))
	d, ok := common.IgnoredDevices.Get("pdu-other-vendor")
	if assert.True(ok) {
		assert.Len(d.Plugins, 2)
	}

	// once ignored the device is not polled again
	s.detected = map[string]bool{tempBase: true}
	assert.NoError(testutil.CollectAndCompare(exp, strings.NewReader(fmt.Sprintf(upExpected, 2)), "up"))
}

func Test_Exporter_PartialDetection(t *testing.T) {
	assert := assert.New(t)
	s := pduSession()
	s.detected = map[string]bool{tempBase: true}

	exp, err := NewExporter(context.Background(), "pdu-temp-only", "", allPlugins(t), WithDialer(dialer(s, nil)))
	if !assert.NoError(err) {
		return
	}

	assert.NoError(testutil.CollectAndCompare(exp, strings.NewReader(fmt.Sprintf(upExpected, 1)), "up"))
	_, ignored := common.IgnoredDevices.Get("pdu-temp-only")
	assert.False(ignored)

	services, err := exp.Discover()
	assert.NoError(err)
	assert.Equal(map[string][]check.Service{rackpdu.TemperaturePluginName: {{Item: "Sensor-1"}}}, services)
}

func Test_Exporter_Down(t *testing.T) {
	tests := []struct {
		name    string
		session *fakeSession
		dialErr error
	}{
		{name: "DialError", dialErr: errors.New("no route to host")},
		{name: "WalkError", session: &fakeSession{detected: map[string]bool{tempBase: true, humidityBase: true}, walkErr: errors.New("request timeout")}},
		{name: "ParseError", session: &fakeSession{
			detected: map[string]bool{tempBase: true, humidityBase: true},
			tables:   map[string][][]string{tempBase + ".3.1": {{"Sensor-9", "35", "40"}}},
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			exp, err := NewExporter(context.Background(), "pdu-down", "", allPlugins(t), WithDialer(dialer(test.session, test.dialErr)))
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, testutil.CollectAndCompare(exp, strings.NewReader(fmt.Sprintf(upExpected, 0)), "up"))
			_, ignored := common.IgnoredDevices.Get("pdu-down")
			assert.False(t, ignored)
		})
	}
}

func Test_Exporter_Check(t *testing.T) {
	assert := assert.New(t)
	reg := rackpdu.NewRegistry(temperature.NewChecker(nil))

	humidity, _ := reg.Select("humidity")
	r, _ := rules.Parse([]byte("humidity:\n  - item: Sensor-1\n    levels_lower: [30, 20]\n"))
	exp, err := NewExporter(context.Background(), "pdu-check", "", humidity, WithDialer(dialer(pduSession(), nil)), WithRules(r))
	if !assert.NoError(err) {
		return
	}

	sum, err := exp.Check("Sensor-1")
	assert.NoError(err)
	assert.Equal(check.WARN, sum.State)
	assert.Equal("28.00% (warn/crit below 30.00%/20.00%)(!)", sum.Text)
	assert.Equal("humidity=28", sum.Perfdata)

	sum, err = exp.Check("Sensor-7")
	assert.NoError(err)
	assert.Equal(check.UNKNOWN, sum.State)

	temp, _ := reg.Select("temp")
	exp, _ = NewExporter(context.Background(), "pdu-check", "", temp, WithDialer(dialer(pduSession(), nil)))
	_, err = exp.Check("Sensor-7")
	assert.True(errors.Is(err, ErrUnknownItem))

	sum, err = exp.Check("Sensor-1")
	assert.NoError(err)
	assert.Equal("OK - Temperature: 22.4 °C | temp=22.4;35;40", sum.PluginOutput())
}

func Test_Exporter_CheckWithoutTrend(t *testing.T) {
	const deltaKey = "temp." + rackpdu.TemperaturePluginName + ".Sensor-1.delta"
	r, err := rules.Parse([]byte("temperature:\n  - trend_compute:\n      period: 60\n      trend_levels: [5, 10]\n"))
	if !assert.NoError(t, err) {
		return
	}

	tests := []struct {
		name    string
		opts    []Option
		sampled bool
	}{
		{name: "Scrape", sampled: true},
		{name: "OnDemand", opts: []Option{WithoutTrend()}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := valuestore.NewMemory()
			temp, _ := rackpdu.NewRegistry(temperature.NewChecker(store)).Select("temp")
			opts := append([]Option{WithDialer(dialer(pduSession(), nil)), WithRules(r)}, test.opts...)
			exp, err := NewExporter(context.Background(), "pdu-trend", "", temp, opts...)
			if !assert.NoError(t, err) {
				return
			}

			sum, err := exp.Check("Sensor-1")
			assert.NoError(t, err)
			assert.Equal(t, check.OK, sum.State)

			_, err = store.Get(deltaKey)
			if test.sampled {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, valuestore.ErrNotFound))
			}
		})
	}
}

func Test_NewExporter(t *testing.T) {
	_, err := NewExporter(context.Background(), "", "", allPlugins(t))
	assert.Error(t, err)
	_, err = NewExporter(context.Background(), "pdu1", "", nil)
	assert.Error(t, err)
}
