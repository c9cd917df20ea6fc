// Package wasmtime binds the Runtime Contract (spec component 4.D) to
// bytecodealliance/wasmtime-go, the bound Runtime Adapter (spec component
// 4.E), grounded on the pack's ifruncillo-idlenet-agent sandbox which shows
// the same engine's native fuel-metering API.
package wasmtime

import (
	"context"
	"fmt"
	"math"

	wt "github.com/bytecodealliance/wasmtime-go/v15"

	"github.com/mantle-dev/mantle/internal/runtime"
)

// neverDeadline is set on every store at instantiation so that Interrupt's
// single global epoch increment trips only the store it targets, not every
// concurrently running call (see Interrupt).
const neverDeadline = uint64(1) << 62

// Adapter is the concrete wasmtime-backed Engine.
type Adapter struct {
	engine *wt.Engine
}

// NewAdapter builds an Adapter with fuel consumption and epoch-based
// interruption enabled, matching the teacher lineage's engine-config setup
// in internal/wasm/sandbox.go.
func NewAdapter() *Adapter {
	cfg := wt.NewConfig()
	cfg.SetConsumeFuel(true)
	cfg.SetEpochInterruption(true)
	return &Adapter{engine: wt.NewEngineWithConfig(cfg)}
}

type moduleRef struct {
	module    *wt.Module
	fuelQuota uint64
}

type storeHandle struct {
	store *wt.Store
	quota uint64
}

type instanceHandle struct {
	instance *wt.Instance
	store    *wt.Store
}

// Compile validates bytes and produces a re-instantiable module reference
// primed with fuelQuota.
func (a *Adapter) Compile(bytes []byte, fuelQuota uint64) (runtime.ModuleRef, error) {
	mod, err := wt.NewModule(a.engine, bytes)
	if err != nil {
		return nil, &runtime.CompilationFailedError{Detail: err.Error()}
	}
	return &moduleRef{module: mod, fuelQuota: fuelQuota}, nil
}

// Instantiate creates a fresh store primed with the module's fuel quota and
// wires imports into a fresh linker before instantiating.
func (a *Adapter) Instantiate(_ context.Context, mod runtime.ModuleRef, imports runtime.ImportTable) (runtime.Instance, runtime.Store, error) {
	ref, ok := mod.(*moduleRef)
	if !ok {
		return nil, nil, &runtime.InstantiationFailedError{Detail: "invalid module reference"}
	}

	store := wt.NewStore(a.engine)
	if err := store.AddFuel(ref.fuelQuota); err != nil {
		return nil, nil, &runtime.InstantiationFailedError{Detail: fmt.Sprintf("add fuel: %v", err)}
	}
	store.SetEpochDeadline(neverDeadline)

	linker := wt.NewLinker(a.engine)
	for moduleName, fns := range imports {
		for name, hf := range fns {
			fn := wt.NewFunc(store, hostFuncType(hf), hostFuncCallback(hf))
			if err := linker.Define(store, moduleName, name, fn.AsExtern()); err != nil {
				return nil, nil, &runtime.InstantiationFailedError{Detail: fmt.Sprintf("define %s.%s: %v", moduleName, name, err)}
			}
		}
	}

	instance, err := linker.Instantiate(store, ref.module)
	if err != nil {
		return nil, nil, &runtime.InstantiationFailedError{Detail: err.Error()}
	}

	return &instanceHandle{instance: instance, store: store}, &storeHandle{store: store, quota: ref.fuelQuota}, nil
}

// Call invokes a single exported function, converting raw uint64 words to
// and from wasmtime's tagged Val representation.
func (a *Adapter) Call(_ context.Context, instance runtime.Instance, store runtime.Store, function string, args []uint64) ([]uint64, error) {
	ih, ok := instance.(*instanceHandle)
	if !ok {
		return nil, &runtime.OtherError{Detail: "invalid instance handle"}
	}
	st := ih.store

	fn := ih.instance.GetFunc(st, function)
	if fn == nil {
		return nil, &runtime.OtherError{Detail: fmt.Sprintf("no such export: %s", function)}
	}

	converted := convertArgsToWasmtime(fn, st, args)
	result, err := fn.Call(st, converted...)
	if err != nil {
		return nil, err
	}
	return convertResultFromWasmtime(result), nil
}

// FuelRemaining subtracts the store's consumed fuel from its original quota.
func (a *Adapter) FuelRemaining(store runtime.Store) (uint64, error) {
	sh, ok := store.(*storeHandle)
	if !ok {
		return 0, fmt.Errorf("invalid store handle")
	}
	consumed, ok := sh.store.FuelConsumed()
	if !ok {
		return 0, nil
	}
	if consumed >= sh.quota {
		return 0, nil
	}
	return sh.quota - consumed, nil
}

// CaptureMemory reads the complete linear memory. If the instance has no
// memory export the capture is an empty slice, never an error.
func (a *Adapter) CaptureMemory(instance runtime.Instance) ([]byte, error) {
	ih, ok := instance.(*instanceHandle)
	if !ok {
		return nil, nil
	}
	ext := ih.instance.GetExport(ih.store, "memory")
	if ext == nil {
		return nil, nil
	}
	mem := ext.Memory()
	if mem == nil {
		return nil, nil
	}
	data := mem.UnsafeData(ih.store)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Interrupt trips the targeted store's epoch deadline without affecting
// other concurrently executing stores: it lowers only this store's
// deadline to zero, then performs one global epoch increment. Every other
// store was primed with neverDeadline at Instantiate, so the single
// increment never reaches their deadline.
func (a *Adapter) Interrupt(store runtime.Store) error {
	sh, ok := store.(*storeHandle)
	if !ok {
		return fmt.Errorf("invalid store handle")
	}
	sh.store.SetEpochDeadline(0)
	a.engine.IncrementEpoch()
	return nil
}

// Dispose is a no-op: wasmtime-go releases engine resources through Go's
// garbage collector and finalizers, matching the teacher lineage's Close().
func (a *Adapter) Dispose(_ runtime.Instance, _ runtime.Store) error {
	return nil
}

// Exports lists a compiled module's export names without instantiating it.
func (a *Adapter) Exports(mod runtime.ModuleRef) []string {
	ref, ok := mod.(*moduleRef)
	if !ok {
		return nil
	}
	var names []string
	for _, exp := range ref.module.Exports() {
		names = append(names, exp.Name())
	}
	return names
}

// Imports lists "module_name.function_name" pairs a compiled module
// declares.
func (a *Adapter) Imports(mod runtime.ModuleRef) []string {
	ref, ok := mod.(*moduleRef)
	if !ok {
		return nil
	}
	var names []string
	for _, imp := range ref.module.Imports() {
		moduleName := ""
		if imp.Module() != "" {
			moduleName = imp.Module()
		}
		names = append(names, fmt.Sprintf("%s.%s", moduleName, imp.Name()))
	}
	return names
}

func hostFuncType(hf runtime.HostFunction) *wt.FuncType {
	params := make([]*wt.ValType, len(hf.ParamTypes))
	for i, p := range hf.ParamTypes {
		params[i] = valKind(p)
	}
	results := make([]*wt.ValType, len(hf.ResultTypes))
	for i, r := range hf.ResultTypes {
		results[i] = valKind(r)
	}
	return wt.NewFuncType(params, results)
}

func valKind(v runtime.ValueType) *wt.ValType {
	switch v {
	case runtime.I64:
		return wt.NewValType(wt.KindI64)
	case runtime.F32:
		return wt.NewValType(wt.KindF32)
	case runtime.F64:
		return wt.NewValType(wt.KindF64)
	default:
		return wt.NewValType(wt.KindI32)
	}
}

func hostFuncCallback(hf runtime.HostFunction) func(*wt.Caller, []wt.Val) ([]wt.Val, *wt.Trap) {
	return func(caller *wt.Caller, vals []wt.Val) (out []wt.Val, trap *wt.Trap) {
		defer func() {
			if r := recover(); r != nil {
				out, trap = nil, wt.NewTrap(fmt.Sprintf("host callback failed: %v", r))
			}
		}()

		args := make([]uint64, len(vals))
		for i, v := range vals {
			switch v.Kind() {
			case wt.KindI64:
				args[i] = uint64(v.I64())
			default:
				args[i] = uint64(uint32(v.I32()))
			}
		}

		results, err := hf.Impl(context.Background(), &callerAdapter{caller: caller}, args)
		if err != nil {
			return nil, wt.NewTrap(err.Error())
		}

		out = make([]wt.Val, len(results))
		for i, r := range results {
			if i < len(hf.ResultTypes) && hf.ResultTypes[i] == runtime.I64 {
				out[i] = wt.ValI64(int64(r))
			} else {
				out[i] = wt.ValI32(int32(uint32(r)))
			}
		}
		return out, nil
	}
}

// callerAdapter exposes a wasmtime.Caller's linear memory through the
// engine-agnostic runtime.Caller interface host functions are written
// against.
type callerAdapter struct {
	caller *wt.Caller
}

func (c *callerAdapter) memory() *wt.Memory {
	ext := c.caller.GetExport("memory")
	if ext == nil {
		return nil
	}
	return ext.Memory()
}

func (c *callerAdapter) ReadMemory(offset, length uint32) ([]byte, bool) {
	mem := c.memory()
	if mem == nil {
		return nil, false
	}
	data := mem.UnsafeData(c.caller)
	if uint64(offset)+uint64(length) > uint64(len(data)) {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, true
}

func (c *callerAdapter) WriteMemory(offset uint32, payload []byte) bool {
	mem := c.memory()
	if mem == nil {
		return false
	}
	data := mem.UnsafeData(c.caller)
	if uint64(offset)+uint64(len(payload)) > uint64(len(data)) {
		return false
	}
	copy(data[offset:], payload)
	return true
}

func (c *callerAdapter) MemorySize() uint32 {
	mem := c.memory()
	if mem == nil {
		return 0
	}
	return uint32(len(mem.UnsafeData(c.caller)))
}

func convertArgsToWasmtime(fn *wt.Func, store *wt.Store, args []uint64) []interface{} {
	paramTypes := fn.Type(store).Params()
	out := make([]interface{}, len(args))
	for i, a := range args {
		if i < len(paramTypes) && paramTypes[i].Kind() == wt.KindI64 {
			out[i] = int64(a)
		} else {
			out[i] = int32(uint32(a))
		}
	}
	return out
}

func convertResultFromWasmtime(result interface{}) []uint64 {
	if result == nil {
		return nil
	}
	if vals, ok := result.([]interface{}); ok {
		out := make([]uint64, len(vals))
		for i, v := range vals {
			out[i] = toUint64(v)
		}
		return out
	}
	return []uint64{toUint64(result)}
}

func toUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case int32:
		return uint64(uint32(n))
	case int64:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case float32:
		return uint64(math.Float32bits(n))
	case float64:
		return math.Float64bits(n)
	default:
		return 0
	}
}
