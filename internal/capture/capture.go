// Package capture implements spec component 4.G: extracting memory, fuel,
// and call context from a live (possibly trapped) instance into a forensic
// dump, or synthesizing a minimal dump when no instance exists.
package capture

import (
	"github.com/mantle-dev/mantle/internal/dump"
	"github.com/mantle-dev/mantle/internal/runtime"
)

// Context carries the call-level facts Capture merges with the live
// instance's memory and fuel ledger.
type Context struct {
	Reason          dump.Reason
	FuelAllocated   uint64
	FunctionCalled  string
	Args            []uint64
	ExecutionTimeUS uint64
	StackTrace      []dump.StackFrame
}

// Capture constructs a full dump from a live instance/store pair. Memory is
// read before the fuel ledger, and neither read mutates the instance, per
// spec component 4.G's ordering requirement.
func Capture(engine runtime.Engine, instance runtime.Instance, store runtime.Store, ctx Context) *dump.Dump {
	mem, err := engine.CaptureMemory(instance)
	if err != nil {
		// Adapter-mechanical failure: best-effort, never an error to the
		// caller (spec component 4.D).
		mem = nil
	}
	fuelRemaining, err := engine.FuelRemaining(store)
	if err != nil {
		fuelRemaining = 0
	}
	return dump.New(dump.Params{
		Reason:          ctx.Reason,
		Memory:          mem,
		FuelRemaining:   fuelRemaining,
		FuelAllocated:   ctx.FuelAllocated,
		FunctionCalled:  ctx.FunctionCalled,
		Args:            ctx.Args,
		ExecutionTimeUS: ctx.ExecutionTimeUS,
		StackTrace:      ctx.StackTrace,
	})
}

// Minimal constructs a dump with empty memory and zero fuel remaining, used
// when compilation or instantiation itself failed and no instance exists.
func Minimal(ctx Context) *dump.Dump {
	return dump.New(dump.Params{
		Reason:          ctx.Reason,
		FuelRemaining:   0,
		FuelAllocated:   ctx.FuelAllocated,
		FunctionCalled:  ctx.FunctionCalled,
		Args:            ctx.Args,
		ExecutionTimeUS: ctx.ExecutionTimeUS,
		StackTrace:      ctx.StackTrace,
	})
}
