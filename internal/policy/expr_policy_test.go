package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/domain/capability"
	"github.com/mantle-dev/mantle/internal/policy"
)

func TestExprPolicyDeniesHighRiskUnlessLog(t *testing.T) {
	t.Parallel()

	p, err := policy.NewExprPolicy(`risk_level != "high" || kind == "log"`)
	require.NoError(t, err)

	allowed, err := p.Allows(capability.Time)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = p.Allows(capability.Network)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestExprPolicyNarrowOnlyShrinksGrantedSet(t *testing.T) {
	t.Parallel()

	p, err := policy.NewExprPolicy(`risk_level == "low"`)
	require.NoError(t, err)

	granted := capability.Set{capability.Time, capability.Random, capability.Network, capability.FilesystemWrite}
	narrowed, err := p.Narrow(granted)
	require.NoError(t, err)
	assert.ElementsMatch(t, capability.Set{capability.Time, capability.Random}, narrowed)
}

func TestNewExprPolicyRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	_, err := policy.NewExprPolicy(`kind +`)
	assert.Error(t, err)
}
