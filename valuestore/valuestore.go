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

// Package valuestore keeps small per-item values between check runs, such as
// the previous reading needed to compute a rate.
package valuestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	raftboltdb "github.com/hashicorp/raft-boltdb/v2"
)

var (
	ErrNotFound = errors.New("key not found")
)

// Store is a keyed byte store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Sample is a timestamped value as kept by the rate and average helpers.
type Sample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// GetSample decodes the sample stored under key.
func GetSample(s Store, key string) (Sample, error) {
	var sample Sample
	b, err := s.Get(key)
	if err != nil {
		return sample, err
	}
	if err := json.Unmarshal(b, &sample); err != nil {
		return sample, fmt.Errorf("error decoding sample %s - %w", key, err)
	}
	return sample, nil
}

// SetSample encodes and stores the sample under key.
func SetSample(s Store, key string, sample Sample) error {
	b, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return s.Set(key, b)
}

// Memory is a process local Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Bolt persists values in a BoltDB file so trends survive restarts.
type Bolt struct {
	store *raftboltdb.BoltStore
}

// OpenBolt opens or creates the store file at path.
func OpenBolt(path string) (*Bolt, error) {
	s, err := raftboltdb.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open value store %s: %w", path, err)
	}
	return &Bolt{store: s}, nil
}

func (b *Bolt) Get(key string) ([]byte, error) {
	v, err := b.store.Get([]byte(key))
	if err != nil {
		if errors.Is(err, raftboltdb.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (b *Bolt) Set(key string, value []byte) error {
	return b.store.Set([]byte(key), value)
}

func (b *Bolt) Close() error {
	return b.store.Close()
}
