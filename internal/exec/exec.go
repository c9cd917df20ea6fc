// Package exec implements the Execution Manager (spec component 4.I): the
// compile -> instantiate -> execute -> (succeeded | crashed) -> disposed
// lifecycle that orchestrates the fuel policy, capability gating,
// host-function table, runtime contract, capture, and forensic dump
// components per call.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mantle-dev/mantle/internal/capture"
	"github.com/mantle-dev/mantle/internal/domain/capability"
	"github.com/mantle-dev/mantle/internal/dump"
	"github.com/mantle-dev/mantle/internal/fuel"
	"github.com/mantle-dev/mantle/internal/hostfunc"
	"github.com/mantle-dev/mantle/internal/runtime"
)

// Config is one call's configuration. Fuel and TimeoutMS are pointers so the
// manager can distinguish "caller omitted this" (nil, fall back to process
// defaults) from "caller explicitly asked for zero" (spec's rejected fuel=0
// case still applies once a value is present).
type Config struct {
	Fuel         *uint64
	TimeoutMS    *uint64
	Capabilities capability.Set
}

// Metadata accompanies a successful call.
type Metadata struct {
	FuelRemaining        uint64
	ExecutionTimeUS      uint64
	MemoryHighWaterBytes int
}

// Result is the ok(...) outcome.
type Result struct {
	Values   []uint64
	Metadata Metadata
}

// Crash is the crash(reason, dump) outcome.
type Crash struct {
	Reason dump.ReasonKind
	Dump   *dump.Dump
}

// Outcome is exactly one of OK or Crash, never neither, never both: the Go
// rendering of the call contract's "never returns without either a result
// or a dump" guarantee.
type Outcome struct {
	OK    *Result
	Crash *Crash
}

func ok(r Result) Outcome       { return Outcome{OK: &r} }
func crashed(c Crash) Outcome   { return Outcome{Crash: &c} }
func (o Outcome) Succeeded() bool { return o.OK != nil }

// Manager owns one bound runtime.Engine and the fuel policy defaults used
// when a call omits fuel/timeout.
type Manager struct {
	engine runtime.Engine
	policy *fuel.Policy
	logger *slog.Logger
}

// NewManager binds an engine and policy. A nil logger falls back to
// slog.Default().
func NewManager(engine runtime.Engine, policy *fuel.Policy, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{engine: engine, policy: policy, logger: logger}
}

// Execute runs the full lifecycle for one call. It never panics out to the
// caller and never returns an Outcome with neither OK nor Crash set.
func (m *Manager) Execute(ctx context.Context, moduleBytes []byte, function string, args []uint64, cfg Config) Outcome {
	start := time.Now()

	fuelQuota := m.policy.DefaultFuel()
	if cfg.Fuel != nil {
		fuelQuota = *cfg.Fuel
	}
	if err := fuel.Validate(fuelQuota); err != nil {
		return crashed(inputCrash(dump.InvalidArgument(err.Error()), fuelQuota, function, args, start))
	}

	if err := capability.Validate(cfg.Capabilities); err != nil {
		return crashed(inputCrash(dump.InvalidArgument(err.Error()), fuelQuota, function, args, start))
	}

	timeoutMS := m.policy.DefaultTimeoutMS()
	if cfg.TimeoutMS != nil {
		timeoutMS = *cfg.TimeoutMS
	}

	mod, err := m.engine.Compile(moduleBytes, fuelQuota)
	if err != nil {
		return crashed(inputCrash(dump.CompilationFailed(err.Error()), fuelQuota, function, args, start))
	}

	imports := hostfunc.Build(capability.Expand(cfg.Capabilities), m.logger, function)

	instance, store, err := m.engine.Instantiate(ctx, mod, imports)
	if err != nil {
		return crashed(inputCrash(dump.InstantiationFailed(err.Error()), fuelQuota, function, args, start))
	}

	defer func() {
		_ = m.engine.Dispose(instance, store)
	}()

	return m.runCall(ctx, instance, store, function, args, fuelQuota, timeoutMS, start)
}

// runCall races the guest call against timeoutMS, recovering panics from
// the host side and translating every failure path into a crash dump.
func (m *Manager) runCall(ctx context.Context, instance runtime.Instance, store runtime.Store, function string, args []uint64, fuelQuota, timeoutMS uint64, start time.Time) Outcome {
	type callResult struct {
		values []uint64
		err    error
	}

	resultCh := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- callResult{err: &runtime.OtherError{Detail: fmt.Sprintf("panic: %v", r)}}
			}
		}()
		values, err := m.engine.Call(ctx, instance, store, function, args)
		resultCh <- callResult{values: values, err: err}
	}()

	var res callResult
	var timedOut bool
	if timeoutMS == 0 {
		res = <-resultCh
	} else {
		select {
		case res = <-resultCh:
		case <-time.After(time.Duration(timeoutMS) * time.Millisecond):
			timedOut = true
			_ = m.engine.Interrupt(store)
			res = <-resultCh
		}
	}

	elapsed := time.Since(start)
	elapsedUS := uint64(elapsed.Microseconds())

	if res.err == nil && !timedOut {
		fuelRemaining, _ := m.engine.FuelRemaining(store)
		memory, _ := m.engine.CaptureMemory(instance)
		return ok(Result{
			Values: res.values,
			Metadata: Metadata{
				FuelRemaining:        fuelRemaining,
				ExecutionTimeUS:      elapsedUS,
				MemoryHighWaterBytes: len(memory),
			},
		})
	}

	var reason dump.Reason
	if timedOut {
		// A watchdog-triggered interrupt always means timeout, even if the
		// interrupted call happened to still return a nil error racing the
		// interrupt signal.
		reason = dump.Timeout()
	} else {
		reason = reasonFromError(res.err)
	}

	d := capture.Capture(m.engine, instance, store, capture.Context{
		Reason:          reason,
		FuelAllocated:   fuelQuota,
		FunctionCalled:  function,
		Args:            args,
		ExecutionTimeUS: elapsedUS,
	})
	return crashed(Crash{Reason: reason.Kind, Dump: d})
}

// inputCrash builds a crash outcome for failures detected before (or while
// establishing) the engine's instance, using capture.Minimal since no live
// instance/store exists to sample.
func inputCrash(reason dump.Reason, fuelQuota uint64, function string, args []uint64, start time.Time) Crash {
	d := capture.Minimal(capture.Context{
		Reason:          reason,
		FuelAllocated:   fuelQuota,
		FunctionCalled:  function,
		Args:            args,
		ExecutionTimeUS: uint64(time.Since(start).Microseconds()),
	})
	return Crash{Reason: reason.Kind, Dump: d}
}
