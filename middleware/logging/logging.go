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

package logging

import (
	"context"
	"net/http"
	"time"

	"github.com/nrednav/cuid2"
	"go.uber.org/zap"
)

// TraceIDKey is the context key of the per request trace id.
type TraceIDKey string

const TraceID TraceIDKey = "traceID"

var (
	generate, _ = cuid2.Init(
		cuid2.WithLength(32),
	)
)

// WithTraceID returns ctx carrying a new trace id.
func WithTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceID, generate())
}

// TraceIDFrom returns the trace id stored in ctx or an empty string.
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(TraceID).(string)
	return id
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingHandler accepts an http.Handler and wraps it with a
// handler that logs the request and response information.
func LoggingHandler(h http.Handler) http.Handler {
	if h == nil {
		h = http.DefaultServeMux
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		req = req.WithContext(WithTraceID(req.Context()))
		srw := statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		query := req.URL.Query()

		defer func(start time.Time) {
			zap.L().Info("finished handling",
				zap.String("target", query.Get("target")),
				zap.String("plugins", query.Get("plugins")),
				zap.String("sourceAddr", req.RemoteAddr),
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.String("proto", req.Proto),
				zap.Int("status", srw.status),
				zap.Float64("elapsed_time_sec", time.Since(start).Seconds()),
				zap.String("trace_id", TraceIDFrom(req.Context())),
			)
		}(time.Now())

		h.ServeHTTP(&srw, req)
	})
}
