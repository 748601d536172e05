package buildinfo

import (
	"bytes"
	"encoding/json"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Collect(t *testing.T) {
	stamped := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Path: "github.com/comcast/pdumetrics", Version: "v0.3.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "4f2a9c1"},
				{Key: "vcs.time", Value: "2026-09-30T08:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}
	missing := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := []struct {
		name     string
		version  string
		read     func() (*debug.BuildInfo, bool)
		expected string
		date     string
	}{
		{name: "Unstamped", version: Unknown, read: missing, expected: "pdumetrics/unknown (unknown)", date: Unknown},
		{name: "FromToolchain", version: Unknown, read: stamped, expected: "pdumetrics/v0.3.1 (4f2a9c1) modified", date: "2026-09-30T08:00:00Z"},
		{name: "LdflagsWin", version: "v1.0.0", read: stamped, expected: "pdumetrics/v1.0.0 (4f2a9c1) modified", date: "2026-09-30T08:00:00Z"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := collect(test.version, Unknown, Unknown, test.read)
			assert.Equal(t, test.expected, b.String())
			assert.Equal(t, test.date, b.Date)
		})
	}
}

func Test_Output(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(JSON(&buf))
	var got map[string]interface{}
	assert.NoError(json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(Program, got["program"])
	assert.Contains(got, "version")
	assert.Contains(got, "platform")

	buf.Reset()
	assert.NoError(Print(&buf))
	assert.Contains(buf.String(), "program:    pdumetrics\n")
}
