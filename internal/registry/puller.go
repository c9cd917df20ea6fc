// Package registry fetches a module's bytes from an OCI-compatible
// registry (SPEC_FULL.md supplemented feature 7), completing the teacher's
// declared-but-unused oras-go/v2 dependency. This sits outside the hard
// core's data flow: module bytes still enter exec.Manager.Execute as a
// plain byte string, regardless of origin.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// ModuleMediaType is the artifact media type a mantle module layer is
// expected to carry.
const ModuleMediaType = "application/vnd.mantle.module.wasm"

// Puller resolves an OCI reference to a single module layer's bytes.
type Puller struct {
	// PlainHTTP disables TLS, for talking to a local/test registry.
	PlainHTTP bool

	// Verifier, if set, must confirm a cosign signature on ref before Pull
	// returns its bytes.
	Verifier SignatureVerifier
}

// NewPuller builds a Puller. Retries use oras-go's default backoff policy.
func NewPuller() *Puller { return &Puller{} }

// Pull resolves ref (e.g. "ghcr.io/acme/sandbox-modules:latest") to its
// manifest, then fetches and returns the first layer matching
// ModuleMediaType. If a Verifier is configured, Pull fails unless ref's
// cosign signature checks out.
func (p *Puller) Pull(ctx context.Context, ref string) ([]byte, error) {
	if err := p.Verifier.Verify(ctx, ref); err != nil {
		return nil, fmt.Errorf("signature verification failed for %s: %w", ref, err)
	}

	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve repository %s: %w", ref, err)
	}
	repo.PlainHTTP = p.PlainHTTP
	repo.Client = retry.DefaultClient

	_, manifestData, err := fetchManifest(ctx, repo, ref)
	if err != nil {
		return nil, err
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest for %s: %w", ref, err)
	}

	for _, layer := range manifest.Layers {
		if layer.MediaType != ModuleMediaType {
			continue
		}
		data, err := content.FetchAll(ctx, repo, layer)
		if err != nil {
			return nil, fmt.Errorf("fetch module layer: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no layer with media type %s found in %s", ModuleMediaType, ref)
}

func fetchManifest(ctx context.Context, repo *remote.Repository, ref string) (ocispec.Descriptor, []byte, error) {
	desc, err := repo.Resolve(ctx, ref)
	if err != nil {
		return ocispec.Descriptor{}, nil, fmt.Errorf("resolve tag %s: %w", ref, err)
	}
	rc, err := repo.Fetch(ctx, desc)
	if err != nil {
		return ocispec.Descriptor{}, nil, fmt.Errorf("fetch manifest %s: %w", ref, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ocispec.Descriptor{}, nil, fmt.Errorf("read manifest %s: %w", ref, err)
	}
	return desc, data, nil
}
