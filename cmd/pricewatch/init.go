package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/pricewatch.yaml
var configTemplate embed.FS

// configFileName is the default watch list file name.
const configFileName = ".pricewatch"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pricewatch watch list file",
		Long: `Init creates a new .pricewatch watch list file in the current directory.

The generated file includes:
- A commented product entry to copy from
- Examples for site-specific cookies and headers
- Documentation for all available options

Examples:
  # Create .pricewatch in current directory
  pricewatch init

  # Create the watch list at a specific path
  pricewatch init -o mywatchlist.yaml

  # Force overwrite existing file
  pricewatch init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the watch list")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing watch list file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("watch list file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/pricewatch.yaml")
	if err != nil {
		return fmt.Errorf("failed to read watch list template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write watch list file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created watch list file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to add products and site settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Product URLs and target prices")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Session cookies and headers per retailer")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Automatic add-to-cart on alert")

	return nil
}
