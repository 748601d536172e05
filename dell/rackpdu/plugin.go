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
	"sort"
	"strings"

	"github.com/comcast/pdumetrics/check"
	"github.com/comcast/pdumetrics/temperature"
)

const (
	// SysDescrOID is SNMPv2-MIB::sysDescr.0
	SysDescrOID = ".1.3.6.1.2.1.1.1.0"
	// SysDescrPrefix identifies Dell rack PDU network management cards
	SysDescrPrefix = "DELL Web/SNMP"

	sensorBase = ".1.3.6.1.4.1.674.10903.200.2.200.150"
)

// Tree is an SNMP table to fetch: every row is built from the given columns
// below Base, in column order.
type Tree struct {
	Base    string
	Columns []string
}

// Detection decides whether a device is polled for a plugin. The device must
// report a sysDescr starting with SysDescrPrefix and have OIDs below Exists.
type Detection struct {
	SysDescrPrefix string
	Exists         string
}

// Plugin bundles the SNMP section definition with the check functions of one
// sensor type.
type Plugin struct {
	Name        string
	ServiceName string
	Ruleset     string
	Detect      Detection
	// Config and Status are fetched in this order and passed to Parse.
	Config Tree
	Status Tree

	Parse    func(config, status [][]string) (Section, error)
	Discover func(section Section) []check.Service
	Check    func(item string, params check.Params, section Section) []check.Entry
}

// Description returns the service description for item.
func (p *Plugin) Description(item string) string {
	return fmt.Sprintf(p.ServiceName, item)
}

// Registry holds the plugins by name.
type Registry map[string]*Plugin

// NewRegistry returns both rack PDU sensor plugins. eval checks temperatures.
func NewRegistry(eval temperature.Evaluator) Registry {
	return Registry{
		TemperaturePluginName: NewTemperaturePlugin(eval),
		HumidityPluginName:    NewHumidityPlugin(),
	}
}

// Names returns the registered plugin names in lexical order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the plugins named in the comma separated list. Short names
// "temp" and "humidity" are accepted, an empty list selects all plugins.
func (r Registry) Select(list string) ([]*Plugin, error) {
	if strings.TrimSpace(list) == "" {
		var all []*Plugin
		for _, name := range r.Names() {
			all = append(all, r[name])
		}
		return all, nil
	}

	var plugins []*Plugin
	for _, name := range strings.Split(list, ",") {
		p, ok := r.Lookup(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q, valid plugins are: %s", name, strings.Join(r.Names(), ", "))
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// Lookup finds a plugin by full or short name.
func (r Registry) Lookup(name string) (*Plugin, bool) {
	switch name {
	case "temp", "temperature":
		name = TemperaturePluginName
	case "humidity":
		name = HumidityPluginName
	}
	p, ok := r[name]
	return p, ok
}
