package runtime

import "fmt"

// TrapKind enumerates the guest trap conditions the spec distinguishes.
type TrapKind string

const (
	TrapUnreachable    TrapKind = "unreachable"
	TrapOutOfBounds    TrapKind = "out_of_bounds"
	TrapDivisionByZero TrapKind = "division_by_zero"
	TrapGeneric        TrapKind = "generic"
)

// FuelExhaustedError reports that the guest consumed its entire fuel quota.
type FuelExhaustedError struct{}

func (e *FuelExhaustedError) Error() string { return "fuel exhausted" }

// TrapError reports an in-engine fatal trap.
type TrapError struct {
	Kind   TrapKind
	Detail string
}

func (e *TrapError) Error() string { return fmt.Sprintf("trap(%s): %s", e.Kind, e.Detail) }

// CompilationFailedError reports that the engine rejected the module bytes.
type CompilationFailedError struct {
	Detail string
}

func (e *CompilationFailedError) Error() string { return "compilation failed: " + e.Detail }

// InstantiationFailedError reports that a compiled module could not be
// instantiated against the supplied import table.
type InstantiationFailedError struct {
	Detail string
}

func (e *InstantiationFailedError) Error() string { return "instantiation failed: " + e.Detail }

// TimeoutError reports that the wall-clock deadline elapsed before the call
// returned.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "timeout" }

// OtherError is the catch-all for adapter-mechanical failures that do not
// fit the taxonomy above.
type OtherError struct {
	Detail string
}

func (e *OtherError) Error() string { return e.Detail }
