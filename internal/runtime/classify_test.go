package runtime_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/runtime"
)

func TestClassifyPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		wantFn  func(t *testing.T, got error)
	}{
		{
			name: "fuel wins over trap wording",
			raw:  "trap: all fuel consumed by wasm `add`",
			wantFn: func(t *testing.T, got error) {
				var fuelErr *runtime.FuelExhaustedError
				require.ErrorAs(t, got, &fuelErr)
			},
		},
		{
			name: "unreachable",
			raw:  "wasm trap: wasm unreachable instruction executed",
			wantFn: func(t *testing.T, got error) {
				var trapErr *runtime.TrapError
				require.ErrorAs(t, got, &trapErr)
				assert.Equal(t, runtime.TrapUnreachable, trapErr.Kind)
			},
		},
		{
			name: "out of bounds",
			raw:  "wasm trap: out of bounds memory access",
			wantFn: func(t *testing.T, got error) {
				var trapErr *runtime.TrapError
				require.ErrorAs(t, got, &trapErr)
				assert.Equal(t, runtime.TrapOutOfBounds, trapErr.Kind)
			},
		},
		{
			name: "generic trap",
			raw:  "wasm trap: integer divide by zero",
			wantFn: func(t *testing.T, got error) {
				var trapErr *runtime.TrapError
				require.ErrorAs(t, got, &trapErr)
				assert.Equal(t, runtime.TrapGeneric, trapErr.Kind)
			},
		},
		{
			name: "other",
			raw:  "failed to resolve import `env::missing`",
			wantFn: func(t *testing.T, got error) {
				var otherErr *runtime.OtherError
				require.ErrorAs(t, got, &otherErr)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := runtime.Classify(errors.New(tc.raw))
			tc.wantFn(t, got)
		})
	}
}

func TestClassifyNilIsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, runtime.Classify(nil))
}
