package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/config"
	"github.com/mantle-dev/mantle/internal/domain/capability"
	"github.com/mantle-dev/mantle/internal/dump"
	"github.com/mantle-dev/mantle/internal/exec"
	"github.com/mantle-dev/mantle/internal/fuel"
	"github.com/mantle-dev/mantle/internal/runtime/wasmtime"
)

type fireOptions struct {
	fuelBudget   uint64
	timeoutMS    uint64
	capabilities []string
	dumpPath     string
}

func init() {
	rootCmd.AddCommand(newFireCmd())
}

func newFireCmd() *cobra.Command {
	opts := &fireOptions{}

	cmd := &cobra.Command{
		Use:   "fire <module.wasm> <function> [args...]",
		Short: "Compile, instantiate, and invoke a WebAssembly function under a fuel budget",
		Long: `Fire runs the full compile -> instantiate -> invoke -> capture -> dispose
lifecycle against a single exported function. Arguments are decoded as
unsigned 64-bit integers. Without --capability flags, the grants saved by
"mantle init" are used. On failure, a forensic dump is written to --dump
(default: <module>.mntn) and the process exits non-zero.`,
		Example: `  mantle fire plugin.wasm run 1 2 3
  mantle fire plugin.wasm run --fuel 500000 --timeout-ms 2000 --capability time --capability log`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFire(cmd.Context(), args[0], args[1], args[2:], opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.fuelBudget, "fuel", 0, "fuel budget (0 = use process default)")
	cmd.Flags().Uint64Var(&opts.timeoutMS, "timeout-ms", 0, "wall-clock timeout in milliseconds (0 = use process default)")
	cmd.Flags().StringArrayVar(&opts.capabilities, "capability", nil, "capability token to grant (repeatable; unset = grants saved by mantle init): time, random, log, filesystem_read, filesystem_write, network, host_function:<name>")
	cmd.Flags().StringVar(&opts.dumpPath, "dump", "", "forensic dump output path (default: <module>.mntn)")

	return cmd
}

func runFire(ctx context.Context, modulePath, function string, rawArgs []string, opts *fireOptions) error {
	moduleBytes, err := os.ReadFile(modulePath)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	args, err := parseArgs(rawArgs)
	if err != nil {
		return err
	}

	capSet, err := parseCapabilities(opts.capabilities)
	if err != nil {
		return err
	}
	if len(opts.capabilities) == 0 {
		capSet, err = config.NewManifestStore(config.DefaultManifestPath()).Load()
		if err != nil {
			return fmt.Errorf("load capability manifest: %w", err)
		}
	}

	procCfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load process config: %w", err)
	}

	policy := fuel.NewPolicy(procCfg.DefaultFuel, procCfg.DefaultTimeoutMS)
	manager := exec.NewManager(wasmtime.NewAdapter(), policy, nil)

	cfg := exec.Config{Capabilities: capSet}
	if opts.fuelBudget != 0 {
		cfg.Fuel = &opts.fuelBudget
	}
	if opts.timeoutMS != 0 {
		cfg.TimeoutMS = &opts.timeoutMS
	}

	outcome := manager.Execute(ctx, moduleBytes, function, args, cfg)
	if outcome.Succeeded() {
		fmt.Printf("ok: results=%v fuel_remaining=%d execution_time_us=%d memory_high_water=%dB\n",
			outcome.OK.Values, outcome.OK.Metadata.FuelRemaining, outcome.OK.Metadata.ExecutionTimeUS, outcome.OK.Metadata.MemoryHighWaterBytes)
		return nil
	}

	d := outcome.Crash.Dump
	fmt.Fprintln(os.Stderr, d.Summary())

	dumpPath := opts.dumpPath
	if dumpPath == "" {
		dumpPath = modulePath + ".mntn"
	}
	if err := writeDump(d, dumpPath); err != nil {
		return fmt.Errorf("write forensic dump: %w", err)
	}
	fmt.Fprintf(os.Stderr, "dump written to %s\n", dumpPath)

	return fmt.Errorf("execution crashed: %s", outcome.Crash.Reason)
}

func writeDump(d *dump.Dump, path string) error {
	encoded, err := dump.Encode(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

func parseArgs(raw []string) ([]uint64, error) {
	args := make([]uint64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%q) is not a uint64: %w", i, s, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseCapabilities(raw []string) (capability.Set, error) {
	set := make(capability.Set, 0, len(raw))
	for _, s := range raw {
		if name, ok := strings.CutPrefix(s, "host_function:"); ok {
			set = append(set, capability.HostFunction(name))
			continue
		}
		set = append(set, capability.Token{Kind: s})
	}
	if err := capability.Validate(set); err != nil {
		return nil, fmt.Errorf("invalid --capability flag: %w", err)
	}
	return set, nil
}
