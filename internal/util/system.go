package util

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// LogicalCores returns the number of logical CPU cores (includes hyperthreads).
func LogicalCores() int {
	return runtime.NumCPU()
}

// PhysicalCores returns the number of physical CPU cores.
// On systems with SMT/hyperthreading, this will be less than LogicalCores().
// Falls back to LogicalCores()/2 if detection fails.
func PhysicalCores() int {
	if cores, err := cpu.Counts(false); err == nil && cores > 0 {
		return cores
	}
	logical := LogicalCores()
	if logical > 1 {
		return logical / 2
	}
	return 1
}
