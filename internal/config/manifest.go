// Package config provides process configuration (spec.md §6's runtime /
// default_fuel / default_timeout_ms keys, via viper) and persistence of the
// capability grant manifest CLI invocations share, adapted from the
// teacher's internal/infrastructure/capabilities.FileStore.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/mantle-dev/mantle/internal/domain/capability"
)

// GrantManifest is the on-disk YAML shape of ~/.mantle/capabilities.yaml.
type GrantManifest struct {
	Grants []grantEntry `yaml:"capabilities"`
}

type grantEntry struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name,omitempty"`
}

// ManifestStore persists a capability set across CLI invocations.
type ManifestStore struct {
	path string
}

// DefaultManifestPath returns ~/.mantle/capabilities.yaml, falling back to
// the current directory if the home directory cannot be resolved.
func DefaultManifestPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mantle/capabilities.yaml"
	}
	return filepath.Join(home, ".mantle", "capabilities.yaml")
}

// NewManifestStore builds a store rooted at path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// Path returns the manifest's file path.
func (s *ManifestStore) Path() string { return s.path }

// Load reads the persisted capability set. A missing file yields an empty
// set, not an error.
func (s *ManifestStore) Load() (capability.Set, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return capability.Set{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read capability manifest: %w", err)
	}

	var manifest GrantManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse capability manifest: %w", err)
	}

	set := make(capability.Set, 0, len(manifest.Grants))
	for _, g := range manifest.Grants {
		set = append(set, capability.Token{Kind: g.Kind, Name: g.Name})
	}
	if err := capability.Validate(set); err != nil {
		return nil, fmt.Errorf("capability manifest: %w", err)
	}
	return set, nil
}

// Save persists set, creating the manifest's parent directory if needed.
func (s *ManifestStore) Save(set capability.Set) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create capability manifest directory: %w", err)
	}

	entries := make([]grantEntry, len(set))
	for i, tok := range set {
		entries[i] = grantEntry{Kind: tok.Kind, Name: tok.Name}
	}

	data, err := yaml.MarshalWithOptions(GrantManifest{Grants: entries}, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("marshal capability manifest: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}
