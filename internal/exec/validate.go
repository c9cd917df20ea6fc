package exec

import "fmt"

// ValidateOptions restricts what Validate checks. Nil/empty slices mean "no
// constraint" for that dimension.
type ValidateOptions struct {
	RequiredExports []string
	AllowedImports  []string
}

// Validate compiles moduleBytes and checks every required export is
// present and every declared import is in the allowed set, without
// executing anything. A missing export or disallowed import yields an
// error without instantiating.
func (m *Manager) Validate(moduleBytes []byte, opts ValidateOptions) error {
	mod, err := m.engine.Compile(moduleBytes, m.policy.DefaultFuel())
	if err != nil {
		return fmt.Errorf("compilation_failed: %w", err)
	}

	if len(opts.RequiredExports) > 0 {
		exports := toSet(m.engine.Exports(mod))
		for _, name := range opts.RequiredExports {
			if !exports[name] {
				return fmt.Errorf("missing required export %q", name)
			}
		}
	}

	if len(opts.AllowedImports) > 0 {
		allowed := toSet(opts.AllowedImports)
		for _, name := range m.engine.Imports(mod) {
			if !allowed[name] {
				return fmt.Errorf("disallowed import %q", name)
			}
		}
	}

	return nil
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	return out
}
