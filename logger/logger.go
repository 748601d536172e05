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

package logger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger      *zap.Logger
	atomicLevel = zap.NewAtomicLevel()
)

// LoggerConfig selects the sinks in addition to stdout.
type LoggerConfig struct {
	LogLevel string
	// LogMethod is "", "file" or "vector"
	LogMethod      string
	LogFile        LogFile
	VectorEndpoint string
	// Stderr moves the console output off stdout, which the check command
	// reserves for the plugin output.
	Stderr bool
}

// LogFile configures lumberjack rotation.
type LogFile struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Initialize builds the JSON logger with the app and host fields and installs
// it as the global zap logger.
func Initialize(svc, hostname string, c LoggerConfig) error {
	atomicLevel.SetLevel(parseLevel(c.LogLevel))

	console := os.Stdout
	if c.Stderr {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(ProdEncoderConf()), zapcore.Lock(console), atomicLevel),
	}

	switch c.LogMethod {
	case "":
	case "file":
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(ProdEncoderConf()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(c.LogFile.Path, svc+".log"),
				MaxSize:    c.LogFile.MaxSize, // megabytes
				MaxBackups: c.LogFile.MaxBackups,
				MaxAge:     c.LogFile.MaxAge, // days
			}),
			atomicLevel))
	case "vector":
		u, err := url.Parse(c.VectorEndpoint)
		if err != nil {
			return fmt.Errorf("invalid vector endpoint: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(ProdEncoderConf()),
			newVectorSink(u),
			atomicLevel))
	default:
		return fmt.Errorf("unknown log method %q", c.LogMethod)
	}

	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(),
		zap.Fields(
			zap.String("app", svc),
			zap.String("host", hostname),
		))

	zap.ReplaceGlobals(logger)
	return nil
}

func Flush() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func SetLevel(l string) {
	atomicLevel.SetLevel(parseLevel(l))
}

func GetLevel() string {
	return atomicLevel.Level().String()
}

func parseLevel(l string) zapcore.Level {
	switch l {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func ProdEncoderConf() zapcore.EncoderConfig {
	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.RFC3339TimeEncoder

	return encConf
}

// Verbosity reports the current level.
func Verbosity(w http.ResponseWriter, r *http.Request) {
	level := GetLevel()
	zap.L().Debug("current logging level", zap.String("level", level))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"verbosity": level})
}

// SetVerbosity changes the level to the one given by the v query parameter.
func SetVerbosity(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("v")
	if level == "" {
		http.Error(w, "'v' parameter is not set", http.StatusBadRequest)
		return
	}

	SetLevel(level)
	zap.L().Info("updating logging level", zap.String("level", GetLevel()))

	w.WriteHeader(http.StatusNoContent)
}
