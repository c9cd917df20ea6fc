package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mantle-dev/mantle/internal/config"
	"github.com/mantle-dev/mantle/internal/exec"
	"github.com/mantle-dev/mantle/internal/fuel"
	"github.com/mantle-dev/mantle/internal/runtime/wasmtime"
)

func init() {
	rootCmd.AddCommand(newPreloadCmd())
}

func newPreloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preload <module.wasm>...",
		Short: "Compile a batch of modules concurrently to surface bad modules up front",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreload(args)
		},
	}
}

// runPreload validates every given module concurrently. Each module gets its
// own Manager so one module's failure never aborts the others' compilation.
func runPreload(paths []string) error {
	procCfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load process config: %w", err)
	}
	policy := fuel.NewPolicy(procCfg.DefaultFuel, procCfg.DefaultTimeoutMS)

	var g errgroup.Group
	results := make([]error, len(paths))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			moduleBytes, err := os.ReadFile(path)
			if err != nil {
				results[i] = fmt.Errorf("%s: read: %w", path, err)
				return nil
			}

			manager := exec.NewManager(wasmtime.NewAdapter(), policy, nil)
			if err := manager.Validate(moduleBytes, exec.ValidateOptions{}); err != nil {
				results[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}

			results[i] = nil
			return nil
		})
	}

	// Errors are collected per-module above; g.Wait only reports setup
	// failures inside the goroutines themselves (there are none), so its
	// error is always nil here and intentionally ignored.
	_ = g.Wait()

	var failed int
	for i, err := range results {
		if err != nil {
			failed++
			fmt.Printf("FAIL %s\n", err)
			continue
		}
		fmt.Printf("OK   %s\n", paths[i])
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d module(s) failed preload", failed, len(paths))
	}
	return nil
}
