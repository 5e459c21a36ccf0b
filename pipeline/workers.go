package pipeline

import "github.com/klauspost/cpuid/v2"

// numWorkers resolves a NumThreads setting to a worker count.
func numWorkers(n int) int {
	switch {
	case n > 0:
		return n
	case n == 0:
		return DefaultNumThreads
	}

	if cores := cpuid.CPU.PhysicalCores; cores > 0 {
		return cores
	}
	if cores := cpuid.CPU.LogicalCores; cores > 0 {
		return cores
	}
	return 1
}
