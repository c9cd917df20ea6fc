package hostfunc

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	"github.com/mantle-dev/mantle/internal/runtime"
)

// randomU32Export implements the "random" capability's get_random_u32
// export: () -> i32, host-provided random bits.
func randomU32Export() runtime.HostFunction {
	return runtime.HostFunction{
		ResultTypes: []runtime.ValueType{runtime.I32},
		Impl: func(_ context.Context, _ runtime.Caller, _ []uint64) ([]uint64, error) {
			var buf [4]byte
			if _, err := rand.Read(buf[:]); err != nil {
				return nil, err
			}
			return []uint64{uint64(binary.LittleEndian.Uint32(buf[:]))}, nil
		},
	}
}

// randomU64Export implements the "random" capability's get_random_u64
// export: () -> i64.
func randomU64Export() runtime.HostFunction {
	return runtime.HostFunction{
		ResultTypes: []runtime.ValueType{runtime.I64},
		Impl: func(_ context.Context, _ runtime.Caller, _ []uint64) ([]uint64, error) {
			var buf [8]byte
			if _, err := rand.Read(buf[:]); err != nil {
				return nil, err
			}
			return []uint64{binary.LittleEndian.Uint64(buf[:])}, nil
		},
	}
}
