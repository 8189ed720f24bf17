// Package version хранит сведения о сборке.
//
// Значения задаются через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/orderstore/internal/version.version=v1.0.0"
//
// Без ldflags commit и date берутся из VCS-меток, которые go build встраивает сам.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

const unknown = "unknown"

var (
	version = "dev"
	commit  = unknown
	date    = unknown
)

var resolveOnce sync.Once

func resolve() {
	resolveOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		applyBuildInfo(info)
	})
}

// applyBuildInfo заполняет только то, что не задано через ldflags.
func applyBuildInfo(info *debug.BuildInfo) {
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == unknown && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if date == unknown && s.Value != "" {
				date = s.Value
			}
		}
	}
}

func GetVersion() string {
	resolve()
	return version
}

func GetCommit() string {
	resolve()
	return commit
}

func GetDate() string {
	resolve()
	return date
}

func String() string {
	resolve()
	return fmt.Sprintf("orderstore %s (commit %s, built %s)", version, commit, date)
}

// Fields возвращает сведения о сборке для стартового лога.
func Fields() log.Fields {
	resolve()
	return log.Fields{"version": version, "commit": commit, "build_date": date}
}
