package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/domain/capability"
)

func TestValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tok  capability.Token
		want bool
	}{
		{"time", capability.Time, true},
		{"random", capability.Random, true},
		{"log", capability.Log, true},
		{"filesystem_read", capability.FilesystemRead, true},
		{"filesystem_write", capability.FilesystemWrite, true},
		{"network", capability.Network, true},
		{"host_function named", capability.HostFunction("get_time_ms"), true},
		{"host_function unnamed", capability.HostFunction(""), false},
		{"unknown", capability.Token{Kind: "exec"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, capability.Valid(tc.tok))
		})
	}
}

func TestRiskOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, capability.RiskLow, capability.RiskOf(capability.Time))
	assert.Equal(t, capability.RiskLow, capability.RiskOf(capability.Log))
	assert.Equal(t, capability.RiskMedium, capability.RiskOf(capability.FilesystemRead))
	assert.Equal(t, capability.RiskHigh, capability.RiskOf(capability.FilesystemWrite))
	assert.Equal(t, capability.RiskHigh, capability.RiskOf(capability.Network))
	assert.Equal(t, capability.RiskHigh, capability.RiskOf(capability.Token{Kind: "bogus"}))
}

func TestExpandFilesystemWriteImpliesRead(t *testing.T) {
	t.Parallel()

	expanded := capability.Expand(capability.Set{capability.FilesystemWrite})
	assert.True(t, expanded.Contains(capability.FilesystemWrite))
	assert.True(t, expanded.Contains(capability.FilesystemRead))
}

func TestExpandIsIdentityForOthers(t *testing.T) {
	t.Parallel()

	s := capability.Set{capability.Time, capability.Network}
	assert.ElementsMatch(t, s, capability.Expand(s))
}

func TestValidateRejectsUnknownTokens(t *testing.T) {
	t.Parallel()

	err := capability.Validate(capability.Set{capability.Time, {Kind: "nope"}})
	require.Error(t, err)

	var verr *capability.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Invalid, 1)
}

func TestIncludesChecksExpandedSet(t *testing.T) {
	t.Parallel()

	granted := capability.Set{capability.FilesystemWrite}
	assert.True(t, capability.Includes(granted, capability.FilesystemRead))
	assert.True(t, capability.Includes(granted, capability.FilesystemWrite))
	assert.False(t, capability.Includes(granted, capability.Network))
}

func TestIncludesAll(t *testing.T) {
	t.Parallel()

	granted := capability.Set{capability.Time, capability.Log}
	assert.True(t, capability.IncludesAll(granted, capability.Set{capability.Time, capability.Log}))
	assert.False(t, capability.IncludesAll(granted, capability.Set{capability.Time, capability.Network}))
}

func TestDescribeCoversAllKinds(t *testing.T) {
	t.Parallel()

	for _, tok := range []capability.Token{
		capability.Time, capability.Random, capability.Log,
		capability.FilesystemRead, capability.FilesystemWrite, capability.Network,
		capability.HostFunction("get_random_u32"),
	} {
		assert.NotEmpty(t, capability.Describe(tok))
	}
}
