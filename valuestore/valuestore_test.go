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

package valuestore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Stores(t *testing.T) {
	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "values.db"))
	if !assert.NoError(t, err) {
		return
	}
	defer bolt.Close()

	stores := map[string]Store{
		"Memory": NewMemory(),
		"Bolt":   bolt,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := store.Get("temp.Sensor-1.delta")
			assert.True(errors.Is(err, ErrNotFound))

			_, err = GetSample(store, "temp.Sensor-1.delta")
			assert.True(errors.Is(err, ErrNotFound))

			sample := Sample{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Value: 22.4}
			assert.NoError(SetSample(store, "temp.Sensor-1.delta", sample))

			got, err := GetSample(store, "temp.Sensor-1.delta")
			assert.NoError(err)
			assert.True(sample.Time.Equal(got.Time))
			assert.Equal(22.4, got.Value)

			assert.NoError(store.Set("broken", []byte("{")))
			_, err = GetSample(store, "broken")
			assert.Error(err)
		})
	}
}

func Test_BoltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.db")

	bolt, err := OpenBolt(path)
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, bolt.Set("temp.Sensor-1.trend", []byte("0.2")))
	assert.NoError(t, bolt.Close())

	bolt, err = OpenBolt(path)
	if !assert.NoError(t, err) {
		return
	}
	defer bolt.Close()

	v, err := bolt.Get("temp.Sensor-1.trend")
	assert.NoError(t, err)
	assert.Equal(t, []byte("0.2"), v)
}
