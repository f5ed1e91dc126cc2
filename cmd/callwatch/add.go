package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apillai/callwatch/internal/registry"
	"github.com/spf13/cobra"
)

// addCmd appends a link to the tracked set.
var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Track another link",
	Long: `Add a link to the tracked set.

The link is appended to the links file in the configured data directory.
A running tracker picks it up on its next polling cycle; no restart is
needed. Adding a link that is already tracked is a no-op.

Example:
  callwatch add https://www.astroyogi.com/astrologer/expert/other.aspx
  callwatch add -c config.yaml https://example.com/profile`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	link := args[0]
	if err := registry.ValidateURL(link); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	reg := registry.New(filepath.Join(cfg.DataDir, "all_links.txt"), cfg.DefaultLink)
	if err := reg.Add(link); err != nil {
		if errors.Is(err, registry.ErrExists) {
			fmt.Printf("Already tracked: %s\n", link)
			return nil
		}
		return fmt.Errorf("failed to add link: %w", err)
	}

	fmt.Printf("Now tracking: %s\n", link)
	return nil
}
