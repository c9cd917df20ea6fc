package hostfunc

import (
	"context"
	"log/slog"

	"github.com/mantle-dev/mantle/internal/runtime"
)

// logExports implements the "log" capability's four exports. Each reads
// len bytes at ptr from the calling instance's linear memory, bounds
// checked, and forwards the text to slog at the matching level with the
// calling module's name attached (SPEC_FULL.md open-question decision 3).
func logExports(logger *slog.Logger, callerName string) map[string]runtime.HostFunction {
	return map[string]runtime.HostFunction{
		"log_debug": logExport(logger, callerName, slog.LevelDebug),
		"log_info":  logExport(logger, callerName, slog.LevelInfo),
		"log_warn":  logExport(logger, callerName, slog.LevelWarn),
		"log_error": logExport(logger, callerName, slog.LevelError),
	}
}

func logExport(logger *slog.Logger, callerName string, level slog.Level) runtime.HostFunction {
	return runtime.HostFunction{
		ParamTypes: []runtime.ValueType{runtime.I32, runtime.I32},
		Impl: func(ctx context.Context, caller runtime.Caller, args []uint64) ([]uint64, error) {
			if len(args) != 2 {
				return nil, nil
			}
			ptr, length := uint32(args[0]), uint32(args[1])
			data, ok := caller.ReadMemory(ptr, length)
			if !ok {
				// Out-of-bounds log bodies are dropped, not trapped: a
				// misbehaving logger must not crash the guest.
				return nil, nil
			}
			logger.Log(ctx, level, string(data), slog.String("module", callerName))
			return nil, nil
		},
	}
}
