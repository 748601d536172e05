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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/dell/rackpdu"
	"github.com/comcast/pdumetrics/rules"
	"github.com/comcast/pdumetrics/temperature"
	"github.com/comcast/pdumetrics/valuestore"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_Mux(t *testing.T) {
	log = zap.NewNop()
	registry := rackpdu.NewRegistry(temperature.NewChecker(valuestore.NewMemory()))
	common.IgnoredDevices.Add(common.IgnoredDevice{Name: "pdu-mux-test", Reason: "device not detected"})
	defer common.IgnoredDevices.Remove("pdu-mux-test")

	srv := httptest.NewServer(newMux(registry, rules.Rules{}))
	defer srv.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		contains   string
	}{
		{name: "Index", method: http.MethodGet, path: "/", statusCode: http.StatusOK, contains: "dell_rackpdu_sensor_humidity,dell_rackpdu_sensor_temp"},
		{name: "NotFound", method: http.MethodGet, path: "/redfish/v1", statusCode: http.StatusNotFound},
		{name: "Info", method: http.MethodGet, path: "/info", statusCode: http.StatusOK, contains: `"program":"pdumetrics"`},
		{name: "IgnoredHTML", method: http.MethodGet, path: "/ignored", statusCode: http.StatusOK, contains: "pdu-mux-test"},
		{name: "IgnoredJSON", method: http.MethodGet, path: "/ignored?format=json", statusCode: http.StatusOK, contains: `"name":"pdu-mux-test"`},
		{name: "Verbosity", method: http.MethodGet, path: "/verbosity", statusCode: http.StatusOK, contains: "verbosity"},
		{name: "ScrapeWithoutTarget", method: http.MethodGet, path: "/scrape", statusCode: http.StatusBadRequest},
		{name: "CheckWithoutItem", method: http.MethodGet, path: "/check?target=pdu1&plugin=temp", statusCode: http.StatusBadRequest},
		{name: "ScrapeWrongMethod", method: http.MethodPost, path: "/scrape", statusCode: http.StatusMethodNotAllowed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req, err := http.NewRequest(test.method, srv.URL+test.path, nil)
			if !assert.NoError(t, err) {
				return
			}
			resp, err := http.DefaultClient.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Equal(t, test.statusCode, resp.StatusCode)
			if test.contains != "" {
				var buf bytes.Buffer
				_, _ = buf.ReadFrom(resp.Body)
				assert.Contains(t, buf.String(), test.contains)
			}
		})
	}
}

func Test_RunCheckUnknownPlugin(t *testing.T) {
	log = zap.NewNop()
	registry := rackpdu.NewRegistry(temperature.NewChecker(nil))

	*checkPlugin = "power"
	defer func() { *checkPlugin = "" }()

	var out bytes.Buffer
	code := runCheck(context.Background(), registry, rules.Rules{}, &out)
	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN - unknown plugin \"power\"\n", out.String())
}

func Test_RunDiscoverUnknownPlugin(t *testing.T) {
	log = zap.NewNop()
	registry := rackpdu.NewRegistry(temperature.NewChecker(nil))

	*discoverPlugins = "power"
	defer func() { *discoverPlugins = "" }()

	var out bytes.Buffer
	assert.Equal(t, 2, runDiscover(context.Background(), registry, &out))
	assert.Contains(t, out.String(), "unknown plugin")
}

func Test_IgnoredJSONShape(t *testing.T) {
	common.IgnoredDevices.Add(common.IgnoredDevice{Name: "pdu-shape", Plugins: []string{rackpdu.TemperaturePluginName}, Reason: "device not detected"})
	defer common.IgnoredDevices.Remove("pdu-shape")

	rec := httptest.NewRecorder()
	newMux(rackpdu.NewRegistry(temperature.NewChecker(nil)), rules.Rules{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ignored?format=json", nil))

	var devices []map[string]interface{}
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices)) {
		found := false
		for _, d := range devices {
			if d["name"] == "pdu-shape" {
				found = true
				assert.Equal(t, []interface{}{rackpdu.TemperaturePluginName}, d["plugins"])
			}
		}
		assert.True(t, found)
	}
}
