package config_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/config"
	"github.com/mantle-dev/mantle/internal/domain/capability"
)

func TestManifestStoreLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := config.NewManifestStore(filepath.Join(t.TempDir(), "capabilities.yaml"))
	set, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestManifestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capabilities.yaml")
	store := config.NewManifestStore(path)

	set := capability.Set{capability.Time, capability.Log, capability.HostFunction("emit")}
	require.NoError(t, store.Save(set))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, set, loaded)
}

func TestManifestStoreRejectsUnknownKindOnLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capabilities.yaml")
	store := config.NewManifestStore(path)
	require.NoError(t, store.Save(capability.Set{{Kind: "not_a_real_kind"}}))

	_, err := store.Load()
	assert.Error(t, err)
}

func TestLoadProcessConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "wasmtime", cfg.Runtime)
	assert.Equal(t, uint64(100_000), cfg.DefaultFuel)
	assert.Equal(t, uint64(5_000), cfg.DefaultTimeoutMS)
}

func TestCallConfigValidatorAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	validator, err := config.NewCallConfigValidator()
	require.NoError(t, err)

	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"fuel": 1000, "timeout_ms": 5000, "capabilities": [{"kind": "time"}]}`), &doc))
	assert.NoError(t, validator.Validate(doc))
}

func TestCallConfigValidatorRejectsAdditionalProperties(t *testing.T) {
	t.Parallel()

	validator, err := config.NewCallConfigValidator()
	require.NoError(t, err)

	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"fuel": 1000, "unexpected": true}`), &doc))
	assert.Error(t, validator.Validate(doc))
}
