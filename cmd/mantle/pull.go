package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/registry"
)

type pullOptions struct {
	plainHTTP bool
	out       string
	publicKey string
}

func init() {
	rootCmd.AddCommand(newPullCmd())
}

func newPullCmd() *cobra.Command {
	opts := &pullOptions{}

	cmd := &cobra.Command{
		Use:   "pull <ref> <out.wasm>",
		Short: "Fetch a module's bytes from an OCI-compatible registry",
		Long: `Pull resolves an OCI reference (e.g. ghcr.io/acme/sandbox-modules:latest)
and writes the first layer tagged as a mantle module to the given path.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.plainHTTP, "plain-http", false, "use plain HTTP instead of HTTPS (for local/test registries)")
	cmd.Flags().StringVar(&opts.publicKey, "public-key", "", "cosign public key to verify the module's signature against before writing it (unset = skip verification)")

	return cmd
}

func runPull(cmd *cobra.Command, ref, out string, opts *pullOptions) error {
	puller := &registry.Puller{
		PlainHTTP: opts.plainHTTP,
		Verifier:  registry.SignatureVerifier{PublicKeyRef: opts.publicKey},
	}

	data, err := puller.Pull(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("pull %s: %w", ref, err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(data), out)
	return nil
}
