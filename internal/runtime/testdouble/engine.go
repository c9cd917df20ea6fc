// Package testdouble provides an in-memory fake of runtime.Engine, used by
// internal/exec's tests so the execution state machine can be exercised
// without a real wasmtime module, per spec.md component 4.I's note that the
// Execution Manager dispatches against the Engine interface dynamically.
package testdouble

import (
	"context"
	"fmt"
	"sync"

	"github.com/mantle-dev/mantle/internal/runtime"
)

// Module is a scripted module: compiling it always succeeds, and each call
// into Functions is resolved by name to a fixed outcome.
type Module struct {
	ExportNames []string
	ImportNames []string
	Functions   map[string]func(fuelRemaining uint64) FunctionOutcome
	Memory      []byte
}

// FunctionOutcome describes what a scripted call does to the fake store's
// fuel and what it returns.
type FunctionOutcome struct {
	Results    []uint64
	Err        error
	FuelBurn   uint64
	MemoryOut  []byte
	RecordArgs bool

	// BlockUntilInterrupt, when set, makes Call hang until the engine's
	// Interrupt is observed for this call's store, simulating a guest
	// that never returns before a watchdog timeout fires. Call still
	// resolves with the rest of this outcome's fields once unblocked, so
	// a scripted outcome can exercise the "interrupted but the call still
	// reports success" race as well as the ordinary error path.
	BlockUntilInterrupt bool
}

// Engine is the scripted runtime.Engine implementation.
type Engine struct {
	CompileErr      error
	InstantiateErr  error
	InterruptCalled []runtime.Store
	Disposed        int

	mu sync.Mutex
}

func New() *Engine { return &Engine{} }

type moduleRef struct {
	mod       *Module
	fuelQuota uint64
}

type instance struct{ mod *Module }

type store struct {
	quota    uint64
	consumed uint64

	interruptOnce sync.Once
	interruptCh   chan struct{}
}

func (e *Engine) Compile(bytes []byte, fuelQuota uint64) (runtime.ModuleRef, error) {
	if e.CompileErr != nil {
		return nil, e.CompileErr
	}
	mod, ok := decode(bytes)
	if !ok {
		return nil, fmt.Errorf("testdouble: bytes do not encode a scripted module")
	}
	return &moduleRef{mod: mod, fuelQuota: fuelQuota}, nil
}

func (e *Engine) Instantiate(_ context.Context, mod runtime.ModuleRef, _ runtime.ImportTable) (runtime.Instance, runtime.Store, error) {
	if e.InstantiateErr != nil {
		return nil, nil, e.InstantiateErr
	}
	ref := mod.(*moduleRef)
	return &instance{mod: ref.mod}, &store{quota: ref.fuelQuota, interruptCh: make(chan struct{})}, nil
}

func (e *Engine) Call(_ context.Context, inst runtime.Instance, st runtime.Store, function string, args []uint64) ([]uint64, error) {
	i := inst.(*instance)
	s := st.(*store)
	fn, ok := i.mod.Functions[function]
	if !ok {
		return nil, fmt.Errorf("testdouble: no scripted function %q", function)
	}
	outcome := fn(s.quota - s.consumed)
	if outcome.BlockUntilInterrupt {
		<-s.interruptCh
	}
	s.consumed += outcome.FuelBurn
	if outcome.MemoryOut != nil {
		i.mod.Memory = outcome.MemoryOut
	}
	return outcome.Results, outcome.Err
}

func (e *Engine) FuelRemaining(st runtime.Store) (uint64, error) {
	s := st.(*store)
	if s.consumed >= s.quota {
		return 0, nil
	}
	return s.quota - s.consumed, nil
}

func (e *Engine) CaptureMemory(inst runtime.Instance) ([]byte, error) {
	i := inst.(*instance)
	return i.mod.Memory, nil
}

func (e *Engine) Interrupt(st runtime.Store) error {
	e.mu.Lock()
	e.InterruptCalled = append(e.InterruptCalled, st)
	e.mu.Unlock()

	s := st.(*store)
	s.interruptOnce.Do(func() { close(s.interruptCh) })
	return nil
}

func (e *Engine) Dispose(_ runtime.Instance, _ runtime.Store) error {
	e.Disposed++
	return nil
}

func (e *Engine) Exports(mod runtime.ModuleRef) []string {
	return mod.(*moduleRef).mod.ExportNames
}

func (e *Engine) Imports(mod runtime.ModuleRef) []string {
	return mod.(*moduleRef).mod.ImportNames
}

// Encode/decode let callers hand Compile an opaque []byte while keeping the
// actual scripted Module alive via a registry, since the Engine contract
// requires Compile to take raw bytes.
var registry = map[string]*Module{}

// Register stores mod under name and returns the bytes callers should pass
// to Compile to retrieve it.
func Register(name string, mod *Module) []byte {
	registry[name] = mod
	return []byte("testdouble:" + name)
}

func decode(bytes []byte) (*Module, bool) {
	const prefix = "testdouble:"
	s := string(bytes)
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return nil, false
	}
	mod, ok := registry[s[len(prefix):]]
	return mod, ok
}
