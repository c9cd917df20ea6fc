// Package manifest implements the module sidecar manifest (SPEC_FULL.md
// supplemented feature 2): a module.yaml naming a minimum engine version
// and an expected SHA-256 digest, with a check for each. Neither the CLI
// nor exec.Manager runs these checks; they take effect only where a caller
// invokes them.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
)

// Manifest is the parsed module.yaml sidecar.
type Manifest struct {
	Name             string `yaml:"name"`
	MinEngineVersion string `yaml:"min_engine_version"`
	ExpectedSHA256   string `yaml:"expected_sha256,omitempty"`
}

// Parse decodes a module.yaml document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse module manifest: %w", err)
	}
	return &m, nil
}

// CheckEngineCompat verifies engineVersion satisfies the manifest's
// min_engine_version constraint. An empty constraint is always satisfied.
func (m *Manifest) CheckEngineCompat(engineVersion string) error {
	if m.MinEngineVersion == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(">= " + m.MinEngineVersion)
	if err != nil {
		return fmt.Errorf("module manifest: invalid min_engine_version %q: %w", m.MinEngineVersion, err)
	}
	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("engine version %q: %w", engineVersion, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("engine version %s does not satisfy module's minimum %s", engineVersion, m.MinEngineVersion)
	}
	return nil
}

// CheckDigest verifies moduleBytes hashes to the manifest's expected SHA-256,
// if one was declared. An empty ExpectedSHA256 skips the check.
func (m *Manifest) CheckDigest(moduleBytes []byte) error {
	if m.ExpectedSHA256 == "" {
		return nil
	}
	sum := sha256.Sum256(moduleBytes)
	got := hex.EncodeToString(sum[:])
	if got != m.ExpectedSHA256 {
		return fmt.Errorf("module digest mismatch: expected %s, got %s", m.ExpectedSHA256, got)
	}
	return nil
}
