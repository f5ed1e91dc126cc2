package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/apillai/callwatch/internal/registry"
	"github.com/apillai/callwatch/internal/store"
	"github.com/spf13/cobra"
)

// statusCmd prints the tracker's heartbeat state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show heartbeat state",
	Long: `Show the tracker's heartbeat: how many polling cycles have completed
and when the last one finished.

The heartbeat is read from the configured data directory, so this works
against a tracker running in another process. Before the first cycle
completes the status is reported as pending.

Example:
  callwatch status
  callwatch status -c config.yaml`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	heartbeat := store.NewHeartbeatStore(filepath.Join(cfg.DataDir, "heartbeat.txt"))
	reg := registry.New(filepath.Join(cfg.DataDir, "all_links.txt"), cfg.DefaultLink)

	links := reg.Load()
	fmt.Printf("Tracked links: %d\n", len(links))
	for _, link := range links {
		fmt.Printf("  %s\n", link)
	}

	count, lastPoll, ok := heartbeat.Read()
	if !ok {
		fmt.Println("Heartbeat:     pending (no cycle completed yet)")
		return nil
	}

	fmt.Printf("Poll count:    %d\n", count)
	fmt.Printf("Last poll:     %s (%s ago)\n",
		lastPoll.Format(store.TimeLayout),
		time.Since(lastPoll).Round(time.Second))
	return nil
}
