package exec

import (
	"github.com/mantle-dev/mantle/internal/dump"
	"github.com/mantle-dev/mantle/internal/runtime"
)

// reasonFromError classifies a raw engine error via runtime.Classify and
// translates the result into the dump package's independent Reason
// vocabulary, the seam spec component 4.I owns between 4.D/4.E and 4.F.
func reasonFromError(err error) dump.Reason {
	classified := runtime.Classify(err)
	switch e := classified.(type) {
	case *runtime.FuelExhaustedError:
		return dump.FuelExhausted()
	case *runtime.TrapError:
		return dump.Trap(dump.TrapKind(e.Kind), e.Detail)
	case *runtime.OtherError:
		return dump.Other(e.Detail)
	default:
		return dump.Other(err.Error())
	}
}
