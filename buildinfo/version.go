package buildinfo

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

const (
	Program = "pdumetrics"
	Unknown = "unknown"
)

// overridden at link time, e.g.
// -ldflags "-X github.com/comcast/pdumetrics/buildinfo.gitVersion=v1.2.0"
var (
	gitVersion  = Unknown
	gitRevision = Unknown
	date        = Unknown
)

// Info describes the running binary.
var Info = collect(gitVersion, gitRevision, date, readBuildInfo)

type BuildInfo struct {
	Program     string `json:"program"`
	GitVersion  string `json:"version"`
	GitRevision string `json:"revision"`
	Date        string `json:"build_date"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
	Modified    bool   `json:"modified"`
}

func readBuildInfo() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

// collect falls back to the module version and the vcs settings stamped by
// the go toolchain for anything not set with -ldflags.
func collect(version, revision, built string, read func() (*debug.BuildInfo, bool)) BuildInfo {
	b := BuildInfo{
		Program:     Program,
		GitVersion:  version,
		GitRevision: revision,
		Date:        built,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := read()
	if !ok {
		return b
	}
	if b.GitVersion == Unknown && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.GitVersion = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.GitRevision == Unknown {
				b.GitRevision = s.Value
			}
		case "vcs.time":
			if b.Date == Unknown {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

// String is the one line version used by --version.
func (b BuildInfo) String() string {
	s := fmt.Sprintf("%s/%s (%s)", b.Program, b.GitVersion, b.GitRevision)
	if b.Modified {
		s += " modified"
	}
	return s
}

// Print writes the build info of the binary as "key: value" lines.
func Print(w io.Writer) error {
	for _, kv := range [][2]string{
		{"program", Info.Program},
		{"version", Info.GitVersion},
		{"revision", Info.GitRevision},
		{"build date", Info.Date},
		{"go version", Info.GoVersion},
		{"platform", Info.Platform},
	} {
		if _, err := fmt.Fprintf(w, "%-12s%s\n", kv[0]+":", kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// JSON is the /info response body.
func JSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(Info)
}
