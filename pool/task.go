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

package pool

import (
	"sync"
)

// Task fetches the SNMP tables of one plugin.
type Task struct {
	// Err holds an error that occurred during a task. Its
	// result is only meaningful after Run has been called
	// for the pool that holds it.
	Err error

	Plugin string
	// Tables holds the fetched rows of every table, in fetch order.
	Tables [][][]string

	f func() ([][][]string, error)
}

// NewTask initializes a new task for plugin based on a given work
// function.
func NewTask(plugin string, f func() ([][][]string, error)) *Task {
	return &Task{Plugin: plugin, f: f}
}

// Run runs a Task and does appropriate accounting via a
// given sync.WaitGroup.
func (t *Task) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	t.Tables, t.Err = t.f()
}
