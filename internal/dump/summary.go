package dump

import "fmt"

// Summary renders the single-line human rendering spec component 4.F
// requires: id, function, reason, execution time, fuel-remaining
// percentage, and memory size in KiB.
func (d *Dump) Summary() string {
	pct := 0.0
	if d.FuelAllocated > 0 {
		pct = 100 * float64(d.FuelRemaining) / float64(d.FuelAllocated)
	}
	kib := float64(len(d.Memory)) / 1024
	return fmt.Sprintf(
		"dump %s: function=%q reason=%s exec_time=%dus fuel_remaining=%.1f%% memory=%.1fKiB",
		d.ID, d.FunctionCalled, d.Reason, d.ExecutionTimeUS, pct, kib,
	)
}
