package runtime

import "strings"

// Classify applies the fixed, priority-ordered classifier from spec
// component 4.E to a raw engine error, in order:
//
//  1. mentions "fuel" -> FuelExhaustedError
//  2. mentions "unreachable" -> TrapError{Kind: TrapUnreachable}
//  3. mentions "out of bounds" -> TrapError{Kind: TrapOutOfBounds}
//  4. mentions "trap" (case-insensitive) -> TrapError{Kind: TrapGeneric}
//  5. otherwise -> OtherError
//
// The order is load-bearing: a trap message that also happens to mention
// fuel must still classify as fuel_exhausted. Do not reorder or add cases
// without updating spec component 4.E.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "fuel"):
		return &FuelExhaustedError{}
	case strings.Contains(msg, "unreachable"):
		return &TrapError{Kind: TrapUnreachable, Detail: err.Error()}
	case strings.Contains(msg, "out of bounds"):
		return &TrapError{Kind: TrapOutOfBounds, Detail: err.Error()}
	case strings.Contains(msg, "trap"):
		return &TrapError{Kind: TrapGeneric, Detail: err.Error()}
	default:
		return &OtherError{Detail: err.Error()}
	}
}
