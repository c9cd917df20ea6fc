package fuel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/fuel"
)

func TestNewPolicyDefaults(t *testing.T) {
	t.Parallel()

	p := fuel.NewPolicy(0, 0)
	assert.Equal(t, uint64(100_000), p.DefaultFuel())
	assert.Equal(t, uint64(5_000), p.DefaultTimeoutMS())
}

func TestNewPolicyOverrides(t *testing.T) {
	t.Parallel()

	p := fuel.NewPolicy(5_000, 1_000)
	assert.Equal(t, uint64(5_000), p.DefaultFuel())
	assert.Equal(t, uint64(1_000), p.DefaultTimeoutMS())
}

func TestFuelForTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tier fuel.Tier
		want uint64
	}{
		{fuel.TierTrivial, 1_000},
		{fuel.TierSimple, 10_000},
		{fuel.TierModerate, 100_000},
		{fuel.TierComplex, 1_000_000},
		{fuel.TierHeavy, 10_000_000},
	}
	for _, tc := range cases {
		got, ok := fuel.FuelFor(tc.tier)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := fuel.FuelFor(fuel.Tier("nonexistent"))
	assert.False(t, ok)
}

func TestValidateBoundaries(t *testing.T) {
	t.Parallel()

	require.Error(t, fuel.Validate(0))
	require.NoError(t, fuel.Validate(fuel.MaxFuel))
	require.Error(t, fuel.Validate(fuel.MaxFuel+1))

	var verr *fuel.ValidationError
	err := fuel.Validate(0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, fuel.ErrNotPositive, verr.Kind)

	err = fuel.Validate(fuel.MaxFuel + 1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, fuel.ErrExceedsMaximum, verr.Kind)
}

func TestValidateSignedRejectsNegative(t *testing.T) {
	t.Parallel()

	require.Error(t, fuel.ValidateSigned(-1))
	require.Error(t, fuel.ValidateSigned(0))
	require.NoError(t, fuel.ValidateSigned(100))
}
