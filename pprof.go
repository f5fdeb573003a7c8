package main

import (
	"github.com/pkg/profile"
)

// startProfiler enables the configured pprof mode and returns a stop
// function for the caller to defer, or a no-op when profiling is off.
func startProfiler(mode string) func() {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile).Stop
	case "memory":
		return profile.Start(profile.MemProfile).Stop
	case "allocation":
		return profile.Start(profile.MemProfileAllocs).Stop
	}
	return func() {}
}
