// Package common holds process-level utilities shared across services.
package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Runtime profiles for different server configurations
const (
	// Small server: 2 vCPU, 4GB RAM (test/dev environment)
	SmallServerGOGC     = 400
	SmallServerMemLimit = 2.5 * 1024 * 1024 * 1024 // 2.5GB
	SmallServerMaxProcs = 1                        // leave 1 core for the OS

	// Medium server: 4-8 vCPU, 8-16GB RAM
	MediumServerGOGC     = 600
	MediumServerMemLimit = 8 * 1024 * 1024 * 1024 // 8GB
	MediumServerMaxProcs = 0                      // auto-detect

	// Large server: 16+ vCPU, 32GB+ RAM (production)
	LargeServerGOGC     = 800
	LargeServerMemLimit = 16 * 1024 * 1024 * 1024 // 16GB
	LargeServerMaxProcs = 0                       // auto-detect
)

// detectServerProfile returns settings based on available CPU count. RAM
// detection would need cgo or /proc parsing, so CPU count is the proxy.
func detectServerProfile() (gogc int, memLimit int64, maxProcs int) {
	totalCPU := runtime.NumCPU()

	switch {
	case totalCPU <= 2:
		return SmallServerGOGC, int64(SmallServerMemLimit), SmallServerMaxProcs
	case totalCPU <= 8:
		return MediumServerGOGC, int64(MediumServerMemLimit), totalCPU / 2
	default:
		return LargeServerGOGC, int64(LargeServerMemLimit), totalCPU / 2
	}
}

// InitRuntime tunes GOGC, GOMAXPROCS, and GOMEMLIMIT for a request-driven
// workload dominated by 256-bit integer math. The quoting hot path allocates
// short-lived uint256 values in bursts; a high GOGC keeps collections out of
// the request path and GOMEMLIMIT caps the growth that buys.
// Environment variables GOGC, GOMAXPROCS, GOMEMLIMIT override everything.
func InitRuntime() {
	defaultGOGC, defaultMemLimit, defaultMaxProcs := detectServerProfile()

	if gcPercent := os.Getenv("GOGC"); gcPercent == "" {
		debug.SetGCPercent(defaultGOGC)
		log.Info().
			Int("GOGC", defaultGOGC).
			Msg("[runtime] Set GOGC")
	}

	if maxProcs := os.Getenv("GOMAXPROCS"); maxProcs == "" {
		if defaultMaxProcs == 0 {
			defaultMaxProcs = runtime.NumCPU() / 2
		}
		if defaultMaxProcs < 1 {
			defaultMaxProcs = 1
		}
		runtime.GOMAXPROCS(defaultMaxProcs)
		log.Info().
			Int("GOMAXPROCS", defaultMaxProcs).
			Int("total_cpu", runtime.NumCPU()).
			Msg("[runtime] Set GOMAXPROCS")
	}

	if memLimit := os.Getenv("GOMEMLIMIT"); memLimit == "" {
		debug.SetMemoryLimit(defaultMemLimit)
		log.Info().
			Int64("GOMEMLIMIT_bytes", defaultMemLimit).
			Float64("GOMEMLIMIT_GB", float64(defaultMemLimit)/1024/1024/1024).
			Msg("[runtime] Set memory limit")
	}

	logRuntimeSettings()
}

// logRuntimeSettings logs current Go runtime configuration
func logRuntimeSettings() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Uint64("heap_sys_mb", memStats.HeapSys/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] Current runtime settings")
}
