package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/config"
	"github.com/mantle-dev/mantle/internal/domain/capability"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively choose the default capability grants persisted to ~/.mantle/capabilities.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

var wizardKinds = []string{
	capability.Time.Kind,
	capability.Random.Kind,
	capability.Log.Kind,
	capability.FilesystemRead.Kind,
	capability.FilesystemWrite.Kind,
	capability.Network.Kind,
}

func runInit() error {
	var selected []string

	options := make([]huh.Option[string], len(wizardKinds))
	for i, kind := range wizardKinds {
		tok := capability.Token{Kind: kind}
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s risk) - %s", kind, capability.RiskOf(tok), capability.Describe(tok)), kind)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Grant capabilities by default").
				Description("These tokens will be offered to every module fired without an explicit --capability flag.").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("capability wizard: %w", err)
	}

	set := make(capability.Set, len(selected))
	for i, kind := range selected {
		set[i] = capability.Token{Kind: kind}
	}

	store := config.NewManifestStore(config.DefaultManifestPath())
	if err := store.Save(set); err != nil {
		return fmt.Errorf("save capability manifest: %w", err)
	}

	fmt.Printf("saved %d capability grant(s) to %s\n", len(set), store.Path())
	return nil
}
