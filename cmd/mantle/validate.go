package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/config"
	"github.com/mantle-dev/mantle/internal/exec"
	"github.com/mantle-dev/mantle/internal/fuel"
	"github.com/mantle-dev/mantle/internal/runtime/wasmtime"
)

type validateOptions struct {
	requiredExports []string
	allowedImports  []string
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <module.wasm>",
		Short: "Compile a module and check its exports/imports without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.requiredExports, "require-export", nil, "export name that must be present (repeatable)")
	cmd.Flags().StringArrayVar(&opts.allowedImports, "allow-import", nil, "import name allowed to be declared (repeatable); if set, any other import is rejected")

	return cmd
}

func runValidate(modulePath string, opts *validateOptions) error {
	moduleBytes, err := os.ReadFile(modulePath)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	procCfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load process config: %w", err)
	}
	policy := fuel.NewPolicy(procCfg.DefaultFuel, procCfg.DefaultTimeoutMS)
	manager := exec.NewManager(wasmtime.NewAdapter(), policy, nil)

	if err := manager.Validate(moduleBytes, exec.ValidateOptions{
		RequiredExports: opts.requiredExports,
		AllowedImports:  opts.allowedImports,
	}); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Println("ok")
	return nil
}
