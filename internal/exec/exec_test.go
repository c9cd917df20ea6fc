package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/dump"
	"github.com/mantle-dev/mantle/internal/exec"
	"github.com/mantle-dev/mantle/internal/fuel"
	"github.com/mantle-dev/mantle/internal/runtime/testdouble"
)

func TestExecuteSucceeds(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("succeeds", &testdouble.Module{
		ExportNames: []string{"add"},
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{
			"add": func(uint64) testdouble.FunctionOutcome {
				return testdouble.FunctionOutcome{Results: []uint64{3}, FuelBurn: 50}
			},
		},
	})

	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	outcome := mgr.Execute(context.Background(), bytes, "add", []uint64{1, 2}, exec.Config{})
	require.True(t, outcome.Succeeded())
	assert.Equal(t, []uint64{3}, outcome.OK.Values)
	assert.Equal(t, uint64(100_000-50), outcome.OK.Metadata.FuelRemaining)
}

func TestExecuteTrapProducesDump(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("traps", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{
			"boom": func(uint64) testdouble.FunctionOutcome {
				return testdouble.FunctionOutcome{
					Err:       assertErr("wasm trap: unreachable executed"),
					FuelBurn:  10,
					MemoryOut: make([]byte, dump.PageSize),
				}
			},
		},
	})

	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	outcome := mgr.Execute(context.Background(), bytes, "boom", nil, exec.Config{})
	require.False(t, outcome.Succeeded())
	require.NotNil(t, outcome.Crash)
	assert.Equal(t, dump.ReasonTrap, outcome.Crash.Reason)
	assert.Equal(t, dump.TrapUnreachable, outcome.Crash.Dump.Reason.TrapKind)
	assert.Len(t, outcome.Crash.Dump.Memory, dump.PageSize)
}

func TestExecuteRejectsInvalidFuel(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("unused-fuel", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{},
	})
	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	zero := uint64(0)
	outcome := mgr.Execute(context.Background(), bytes, "f", nil, exec.Config{Fuel: &zero})
	require.False(t, outcome.Succeeded())
	assert.Equal(t, dump.ReasonInvalidArgument, outcome.Crash.Reason)
	assert.Equal(t, 0, engine.Disposed)
}

func TestExecuteCompilationFailure(t *testing.T) {
	t.Parallel()

	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	outcome := mgr.Execute(context.Background(), []byte("not scripted"), "f", nil, exec.Config{})
	require.False(t, outcome.Succeeded())
	assert.Equal(t, dump.ReasonCompilationFailed, outcome.Crash.Reason)
}

func TestExecuteInstantiationFailure(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("inst-fail", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{},
	})
	engine := testdouble.New()
	engine.InstantiateErr = assertErr("link error")
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	outcome := mgr.Execute(context.Background(), bytes, "f", nil, exec.Config{})
	require.False(t, outcome.Succeeded())
	assert.Equal(t, dump.ReasonInstantiationFailed, outcome.Crash.Reason)
}

func TestExecuteDisposesExactlyOnceOnSuccess(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("disposes", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{
			"f": func(uint64) testdouble.FunctionOutcome { return testdouble.FunctionOutcome{} },
		},
	})
	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	mgr.Execute(context.Background(), bytes, "f", nil, exec.Config{})
	assert.Equal(t, 1, engine.Disposed)
}

func TestExecuteRecoversHostPanicAsOther(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("panics", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{
			"f": func(uint64) testdouble.FunctionOutcome { panic("boom") },
		},
	})
	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	outcome := mgr.Execute(context.Background(), bytes, "f", nil, exec.Config{})
	require.False(t, outcome.Succeeded())
	assert.Equal(t, dump.ReasonOther, outcome.Crash.Reason)
	assert.Equal(t, 1, engine.Disposed)
}

func TestValidateChecksExportsAndImports(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("validated", &testdouble.Module{
		ExportNames: []string{"run"},
		ImportNames: []string{"env.get_time_ms"},
		Functions:   map[string]func(uint64) testdouble.FunctionOutcome{},
	})
	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	assert.NoError(t, mgr.Validate(bytes, exec.ValidateOptions{
		RequiredExports: []string{"run"},
		AllowedImports:  []string{"env.get_time_ms"},
	}))

	assert.Error(t, mgr.Validate(bytes, exec.ValidateOptions{RequiredExports: []string{"missing"}}))
	assert.Error(t, mgr.Validate(bytes, exec.ValidateOptions{AllowedImports: []string{"env.other"}}))
}

func TestExecuteTimesOutAndInterruptsTheEngine(t *testing.T) {
	t.Parallel()

	bytes := testdouble.Register("hangs", &testdouble.Module{
		Functions: map[string]func(uint64) testdouble.FunctionOutcome{
			"spin": func(uint64) testdouble.FunctionOutcome {
				return testdouble.FunctionOutcome{BlockUntilInterrupt: true}
			},
		},
	})

	engine := testdouble.New()
	mgr := exec.NewManager(engine, fuel.NewPolicy(0, 0), nil)

	timeoutMS := uint64(20)
	outcome := mgr.Execute(context.Background(), bytes, "spin", nil, exec.Config{TimeoutMS: &timeoutMS})

	require.False(t, outcome.Succeeded())
	require.NotNil(t, outcome.Crash)
	assert.Equal(t, dump.ReasonTimeout, outcome.Crash.Reason)
	assert.Len(t, engine.InterruptCalled, 1)
	assert.Equal(t, 1, engine.Disposed)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
