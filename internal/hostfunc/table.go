// Package hostfunc assembles the guest's import namespace from a granted
// capability set, per spec component 4.C. Every export lives under the
// "env" module namespace; the table is rebuilt fresh for every call, so
// there is no cross-call sharing of host-function state.
package hostfunc

import (
	"log/slog"

	"github.com/mantle-dev/mantle/internal/domain/capability"
	"github.com/mantle-dev/mantle/internal/runtime"
)

const namespace = "env"

// Build translates a granted capability set into the import table the
// Runtime Adapter offers to the guest. Duplicate grants yield one export
// binding each; filesystem_* and network are declared in the capability
// registry but contribute no exports here (future work, per spec 4.C).
func Build(granted capability.Set, logger *slog.Logger, callerName string) runtime.ImportTable {
	if logger == nil {
		logger = slog.Default()
	}
	exports := map[string]runtime.HostFunction{}
	expanded := capability.Expand(granted)

	if expanded.Contains(capability.Time) {
		exports["get_time_ms"] = timeExport()
	}
	if expanded.Contains(capability.Random) {
		exports["get_random_u32"] = randomU32Export()
		exports["get_random_u64"] = randomU64Export()
	}
	if expanded.Contains(capability.Log) {
		for name, level := range logExports(logger, callerName) {
			exports[name] = level
		}
	}

	if len(exports) == 0 {
		return runtime.ImportTable{}
	}
	return runtime.ImportTable{namespace: exports}
}
