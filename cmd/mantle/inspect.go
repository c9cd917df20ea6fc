package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/analysis"
	"github.com/mantle-dev/mantle/internal/dump"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type inspectOptions struct {
	hexDump   bool
	strings   bool
	secrets   bool
	hexOffset int
	hexLength int
}

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <dump.mntn>",
		Short: "Summarize and analyse a forensic dump file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.hexDump, "hex", false, "render a hex dump of the captured memory")
	cmd.Flags().BoolVar(&opts.strings, "strings", false, "extract printable strings from the captured memory")
	cmd.Flags().BoolVar(&opts.secrets, "secrets", false, "scan extracted strings for likely-leaked credentials")
	cmd.Flags().IntVar(&opts.hexOffset, "hex-offset", 0, "starting offset for --hex")
	cmd.Flags().IntVar(&opts.hexLength, "hex-length", 256, "byte length for --hex")

	return cmd
}

func runInspect(path string, opts *inspectOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dump file: %w", err)
	}

	d, err := dump.Decode(data)
	if err != nil {
		return fmt.Errorf("decode dump: %w", err)
	}

	fmt.Println(headingStyle.Render("Mantle forensic dump"))
	fmt.Println(d.Summary())
	fmt.Println(dimStyle.Render(fmt.Sprintf("id=%s timestamp=%s args_hash=%x", d.ID, d.Timestamp.Format("2006-01-02T15:04:05Z"), d.ArgsHash)))

	a := analysis.New(d)

	if opts.hexDump {
		hex, err := a.HexDump(opts.hexOffset, opts.hexLength)
		if err != nil {
			return fmt.Errorf("hex dump: %w", err)
		}
		fmt.Println()
		fmt.Println(headingStyle.Render("Hex dump"))
		fmt.Print(hex)
	}

	if opts.strings {
		fmt.Println()
		fmt.Println(headingStyle.Render("Extracted strings"))
		for _, s := range a.ExtractStrings(analysis.DefaultExtractStringsOptions()) {
			fmt.Printf("  0x%08x  %s\n", s.Offset, s.Value)
		}
	}

	if opts.secrets {
		secrets, err := a.FindSecrets(analysis.DefaultExtractStringsOptions())
		if err != nil {
			return fmt.Errorf("secret scan: %w", err)
		}
		fmt.Println()
		fmt.Println(headingStyle.Render("Secret scan"))
		if len(secrets) == 0 {
			fmt.Println(dimStyle.Render("  none found"))
		}
		for _, s := range secrets {
			fmt.Printf("  0x%08x  %s: %s\n", s.Offset, s.Description, s.Match)
		}
	}

	return nil
}
