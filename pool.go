package nbsite

import "runtime"

// Worker count bounds.
const (
	// MinWorkers keeps at least one conversion running.
	MinWorkers = 1

	// MaxWorkers caps concurrent conversions. Notebooks with large embedded
	// outputs are held in memory until their page is written.
	MaxWorkers = 32
)

// ResolveWorkers determines the number of conversion workers.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return min(workers, MaxWorkers)
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	return max(MinWorkers, min(runtime.GOMAXPROCS(0), MaxWorkers))
}
