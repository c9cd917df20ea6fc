package hostfunc

import (
	"context"
	"time"

	"github.com/mantle-dev/mantle/internal/runtime"
)

// timeExport implements the "time" capability's get_time_ms export:
// () -> i64, milliseconds since the Unix epoch.
func timeExport() runtime.HostFunction {
	return runtime.HostFunction{
		ParamTypes:  nil,
		ResultTypes: []runtime.ValueType{runtime.I64},
		Impl: func(_ context.Context, _ runtime.Caller, _ []uint64) ([]uint64, error) {
			return []uint64{uint64(time.Now().UnixMilli())}, nil
		},
	}
}
