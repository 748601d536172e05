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

package common

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	IgnoredDevices = NewIgnoredList()
)

type host struct {
	H string `json:"host"`
}

// IgnoredDevice is a target that failed detection. It is not polled again
// until it is removed from the list.
type IgnoredDevice struct {
	Name              string    `json:"name"`
	Plugins           []string  `json:"plugins"`
	CredentialProfile string    `json:"credentialProfile,omitempty"`
	Reason            string    `json:"reason"`
	Since             time.Time `json:"since"`
}

// IgnoredList is a concurrency safe set of ignored devices keyed by target.
type IgnoredList struct {
	mu      sync.RWMutex
	devices map[string]IgnoredDevice
}

func NewIgnoredList() *IgnoredList {
	return &IgnoredList{devices: make(map[string]IgnoredDevice)}
}

func (l *IgnoredList) Add(d IgnoredDevice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d.Since.IsZero() {
		d.Since = time.Now()
	}
	l.devices[d.Name] = d
}

func (l *IgnoredList) Get(name string) (IgnoredDevice, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.devices[name]
	return d, ok
}

func (l *IgnoredList) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.devices[name]
	delete(l.devices, name)
	return ok
}

// List returns the ignored devices sorted by name.
func (l *IgnoredList) List() []IgnoredDevice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]IgnoredDevice, 0, len(l.devices))
	for _, d := range l.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Redetector runs detection against an ignored device again.
type Redetector func(ctx context.Context, d IgnoredDevice) error

// TestConn re-runs detection for the host in the request body and removes it
// from the list when the device is detected now.
func TestConn(list *IgnoredList, redetect Redetector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		response := map[string]interface{}{"connectionTest": false}

		h, err := readHost(r)
		if err != nil {
			response["error"] = err.Error()
			writeJSON(w, r, http.StatusBadRequest, response)
			return
		}

		d, ok := list.Get(h.H)
		if !ok {
			log.Error("missing host from ignored hosts list", zap.String("host", h.H), zap.String("path", r.URL.Path))
			response["error"] = "missing host from ignored hosts list"
			writeJSON(w, r, http.StatusNotFound, response)
			return
		}

		if err := redetect(r.Context(), d); err != nil {
			log.Info("ignored host still fails detection", zap.String("host", h.H), zap.Error(err))
			response["error"] = err.Error()
			writeJSON(w, r, http.StatusOK, response)
			return
		}

		list.Remove(h.H)
		log.Info("host detected again, removed from ignored list", zap.String("host", h.H))
		response["connectionTest"] = true
		writeJSON(w, r, http.StatusOK, response)
	}
}

// RemoveHost drops the host in the request body from the list.
func RemoveHost(list *IgnoredList) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := readHost(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if !list.Remove(h.H) {
			http.Error(w, "missing host from ignored hosts list", http.StatusNotFound)
			return
		}
		zap.L().Info("remove host "+h.H+" from ignored list", zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusOK)
	}
}

func readHost(r *http.Request) (host, error) {
	var h host
	body, err := io.ReadAll(r.Body)
	if err != nil {
		zap.L().Error("could not read request body", zap.Error(err), zap.String("path", r.URL.Path))
		return h, err
	}
	if err := json.Unmarshal(body, &h); err != nil {
		zap.L().Error("could not unmarshal host struct", zap.Error(err), zap.String("path", r.URL.Path))
		return h, err
	}
	return h, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	resp, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("could not marshal response", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(resp)
}
