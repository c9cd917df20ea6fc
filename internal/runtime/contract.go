package runtime

import "context"

// ModuleRef, Instance, and Store are opaque handles owned by a concrete
// Engine implementation. The core never inspects their contents; it only
// passes them back through the contract.
type (
	ModuleRef any
	Instance  any
	Store     any
)

// ValueType names a Wasm core value type, used to describe host-function
// signatures in an engine-agnostic way.
type ValueType int

const (
	I32 ValueType = iota
	I64
	F32
	F64
)

// Caller gives a host-function implementation access to the calling
// instance's linear memory, independent of which concrete engine is bound.
type Caller interface {
	ReadMemory(offset, length uint32) ([]byte, bool)
	WriteMemory(offset uint32, data []byte) bool
	MemorySize() uint32
}

// HostFunction describes one import the guest can call into the host.
type HostFunction struct {
	ParamTypes  []ValueType
	ResultTypes []ValueType
	Impl        func(ctx context.Context, caller Caller, args []uint64) ([]uint64, error)
}

// ImportTable maps module_name -> function_name -> HostFunction, per spec
// component 4.C.
type ImportTable map[string]map[string]HostFunction

// Engine is the Runtime Contract (spec component 4.D): the operations any
// plugged-in Wasm engine must honor. Implementations live under
// internal/runtime/<engine>.
type Engine interface {
	// Compile validates bytes and produces a re-instantiable module
	// reference primed with the given fuel quota.
	Compile(bytes []byte, fuelQuota uint64) (ModuleRef, error)

	// Instantiate creates a fresh instance/store pair from mod, wiring
	// imports as the guest's import namespace. Memory is zero-initialized
	// and the fuel ledger is primed to mod's configured quota.
	Instantiate(ctx context.Context, mod ModuleRef, imports ImportTable) (Instance, Store, error)

	// Call invokes a single exported function. args and the returned
	// slice are raw Wasm value-type words (i32/i64 bit patterns).
	Call(ctx context.Context, instance Instance, store Store, function string, args []uint64) ([]uint64, error)

	// FuelRemaining is callable at any time after Instantiate, including
	// after a trap.
	FuelRemaining(store Store) (uint64, error)

	// CaptureMemory reads the complete linear memory. It must succeed
	// (possibly returning an empty slice) even if the instance has
	// trapped, and must never mutate the instance.
	CaptureMemory(instance Instance) ([]byte, error)

	// Interrupt requests that a running call belonging to instance/store
	// stop as soon as the engine can observe it. Engines that cannot
	// interrupt mid-call may no-op; fuel remains the backstop.
	Interrupt(store Store) error

	// Dispose releases engine resources. Idempotent.
	Dispose(instance Instance, store Store) error

	// Exports lists the names exported by a compiled module, used by
	// validate() to check required_exports without instantiating.
	Exports(mod ModuleRef) []string

	// Imports lists "module_name.function_name" pairs the module
	// declares, used by validate() to check allowed_imports.
	Imports(mod ModuleRef) []string
}
