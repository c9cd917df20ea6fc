package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureVerifierNoOpWhenKeyUnset(t *testing.T) {
	t.Parallel()

	v := SignatureVerifier{}
	err := v.Verify(context.Background(), "example.com/acme/sandbox-modules:latest")
	assert.NoError(t, err)
}

func TestSignatureVerifierRejectsUnparsableReference(t *testing.T) {
	t.Parallel()

	v := SignatureVerifier{PublicKeyRef: "testdata/cosign.pub"}
	err := v.Verify(context.Background(), "::not-a-valid-reference::")
	assert.Error(t, err)
}
