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

package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comcast/pdumetrics/config"
	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

var (
	// ErrNotDetected means the device is not a supported rack PDU or does
	// not carry the sensor table.
	ErrNotDetected = errors.New("device not detected")
)

// Walker is the part of a gosnmp session the client uses.
type Walker interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	WalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

// Client fetches sensor tables from one device. A Client is not safe for
// concurrent use.
type Client struct {
	Target string

	walker Walker
	bulk   bool
	close  func() error
}

// NewClient wraps an already connected walker. Bulk requests are used
// unless the session speaks SNMPv1.
func NewClient(target string, w Walker, bulk bool) *Client {
	return &Client{Target: target, walker: w, bulk: bulk, close: func() error { return nil }}
}

// Dial opens a session to target using the global SNMP settings.
func Dial(ctx context.Context, target, community string) (*Client, error) {
	conf := config.GetConfig()

	version, err := ParseVersion(conf.SNMPVersion)
	if err != nil {
		return nil, err
	}

	session := &gosnmp.GoSNMP{
		Target:         target,
		Port:           conf.SNMPPort,
		Community:      community,
		Version:        version,
		Timeout:        conf.SNMPTimeout,
		Retries:        conf.SNMPRetries,
		MaxRepetitions: conf.SNMPMaxRepetitions,
		Context:        ctx,
	}
	if err := session.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", target, err)
	}

	c := NewClient(target, session, version != gosnmp.Version1)
	c.close = func() error { return session.Conn.Close() }
	return c, nil
}

// ParseVersion maps "1", "2c" and "3" to gosnmp versions. SNMPv3 needs
// security parameters the client does not take and is rejected.
func ParseVersion(v string) (gosnmp.SnmpVersion, error) {
	switch strings.ToLower(strings.TrimPrefix(v, "v")) {
	case "1":
		return gosnmp.Version1, nil
	case "2", "2c", "":
		return gosnmp.Version2c, nil
	default:
		return 0, fmt.Errorf("unsupported snmp version %q", v)
	}
}

// Close ends the session.
func (c *Client) Close() error {
	return c.close()
}

// Get returns the string values of the given scalar OIDs. OIDs the device
// does not know are left out of the result.
func (c *Client) Get(oids ...string) (map[string]string, error) {
	packet, err := c.walker.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("get %v from %s: %w", oids, c.Target, err)
	}

	values := make(map[string]string, len(packet.Variables))
	for _, pdu := range packet.Variables {
		if missing(pdu) {
			continue
		}
		values[normalize(pdu.Name)] = Value(pdu)
	}
	return values, nil
}

// Walk returns every PDU below root.
func (c *Client) Walk(root string) ([]gosnmp.SnmpPDU, error) {
	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)
	if c.bulk {
		pdus, err = c.walker.BulkWalkAll(root)
	} else {
		pdus, err = c.walker.WalkAll(root)
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s on %s: %w", root, c.Target, err)
	}
	return pdus, nil
}

// Detect checks that the sysDescr found at sysDescrOID starts with prefix and
// that the device has at least one OID below subtree.
func (c *Client) Detect(sysDescrOID, prefix, subtree string) error {
	values, err := c.Get(sysDescrOID)
	if err != nil {
		return err
	}

	descr := values[normalize(sysDescrOID)]
	if !strings.HasPrefix(descr, prefix) {
		zap.L().Debug("sysDescr does not match", zap.String("target", c.Target), zap.String("sys_descr", descr))
		return fmt.Errorf("%w: sysDescr %q of %s", ErrNotDetected, descr, c.Target)
	}

	pdus, err := c.Walk(subtree)
	if err != nil {
		return err
	}
	for _, pdu := range pdus {
		if !missing(pdu) && strings.HasPrefix(normalize(pdu.Name), normalize(subtree)+".") {
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no OIDs below %s", ErrNotDetected, c.Target, subtree)
}

// WalkTable walks base and assembles one row per OID index with the values
// of columns in order. Rows missing any column are dropped.
func (c *Client) WalkTable(base string, columns []string) ([][]string, error) {
	pdus, err := c.Walk(base)
	if err != nil {
		return nil, err
	}
	return Table(base, columns, pdus), nil
}

// Table assembles rows from walked PDUs. Row order follows the order in which
// indexes first appear.
func Table(base string, columns []string, pdus []gosnmp.SnmpPDU) [][]string {
	prefix := normalize(base) + "."

	var order []string
	cells := map[string]map[string]string{}
	for _, pdu := range pdus {
		name := normalize(pdu.Name)
		if missing(pdu) || !strings.HasPrefix(name, prefix) {
			continue
		}
		column, index, ok := strings.Cut(strings.TrimPrefix(name, prefix), ".")
		if !ok || index == "" {
			continue
		}
		row, ok := cells[index]
		if !ok {
			row = map[string]string{}
			cells[index] = row
			order = append(order, index)
		}
		row[column] = Value(pdu)
	}

	var rows [][]string
	for _, index := range order {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			v, ok := cells[index][col]
			if !ok {
				break
			}
			row = append(row, v)
		}
		if len(row) == len(columns) {
			rows = append(rows, row)
		}
	}
	return rows
}

// Value renders a PDU value as a string, octet strings as text and integers
// in decimal.
func Value(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return strings.TrimRight(string(b), "\x00")
		}
		return fmt.Sprint(pdu.Value)
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).String()
	default:
		return fmt.Sprint(pdu.Value)
	}
}

func missing(pdu gosnmp.SnmpPDU) bool {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return true
	}
	return false
}

func normalize(oid string) string {
	if strings.HasPrefix(oid, ".") {
		return oid
	}
	return "." + oid
}
