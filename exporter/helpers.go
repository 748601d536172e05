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
	"github.com/comcast/pdumetrics/common"
	"github.com/comcast/pdumetrics/dell/rackpdu"
)

// fetch returns the work function polling the config and status tables of p.
func (e *Exporter) fetch(p *rackpdu.Plugin) func() ([][][]string, error) {
	return func() ([][][]string, error) {
		community, err := common.Communities.Community(e.ctx, e.credProfile, e.host)
		if err != nil {
			return nil, err
		}

		session, err := e.dial(e.ctx, e.host, community)
		if err != nil {
			return nil, err
		}
		defer session.Close()

		if err := session.Detect(rackpdu.SysDescrOID, p.Detect.SysDescrPrefix, p.Detect.Exists); err != nil {
			return nil, err
		}

		tables := make([][][]string, 0, 2)
		for _, tree := range []rackpdu.Tree{p.Config, p.Status} {
			rows, err := session.WalkTable(tree.Base, tree.Columns)
			if err != nil {
				return nil, err
			}
			tables = append(tables, rows)
		}
		return tables, nil
	}
}
