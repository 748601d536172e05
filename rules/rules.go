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

// Package rules resolves check parameters for a service from a YAML rule file.
//
//	temperature:
//	  - item: "^Rack-A"
//	    levels: [30, 35]
//	    output_unit: f
//	  - levels_lower: [fixed, [10, 5]]
//	humidity:
//	  - item: ".*"
//	    levels_lower: [30, 20]
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/comcast/pdumetrics/check"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPattern = errors.New("invalid item pattern")
)

// Rule applies Params to every item matched by Item. An empty Item matches
// all items.
type Rule struct {
	Item         string `yaml:"item"`
	check.Params `yaml:",inline"`

	re *regexp.Regexp
}

// Rules are the rule lists keyed by ruleset name.
type Rules map[string][]*Rule

// Load reads the rule file at path. An empty path yields no rules.
func Load(path string) (Rules, error) {
	if path == "" {
		return Rules{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and compiles a YAML rule document.
func Parse(b []byte) (Rules, error) {
	r := Rules{}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for ruleset, list := range r {
		for i, rule := range list {
			if rule == nil {
				return nil, fmt.Errorf("%s rule %d is empty", ruleset, i)
			}
			re, err := regexp.Compile(rule.Item)
			if err != nil {
				return nil, fmt.Errorf("%w: %s rule %d: %v", ErrInvalidPattern, ruleset, i, err)
			}
			rule.re = re
		}
	}
	return r, nil
}

// Params merges the rules of ruleset matching item. For every key the first
// matching rule that sets it wins.
func (r Rules) Params(ruleset, item string) check.Params {
	var params check.Params
	for _, rule := range r[ruleset] {
		if rule.re != nil && !rule.re.MatchString(item) {
			continue
		}
		params = params.Merge(rule.Params)
	}
	return params
}
