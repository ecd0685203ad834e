package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/initializ/edgard/client"
	"github.com/initializ/edgard/internal/tui"
)

var (
	watchURL      string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running control panel in the terminal",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "http://localhost:5000", "control panel base URL")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "status poll interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	panel := client.New(watchURL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := checkPanel(ctx, panel, watchURL); err != nil {
		return err
	}

	model := tui.NewWatchModel(tui.DetectTheme(themeOverride), panel, appVersion, watchInterval)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running watch screen: %w", err)
	}
	return nil
}

// checkPanel fails fast when nothing healthy answers at url.
func checkPanel(ctx context.Context, c *client.Client, url string) error {
	h, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("control panel at %s is not reachable: %w", url, err)
	}
	if h.Status != "ok" {
		return fmt.Errorf("control panel at %s reports status %q", url, h.Status)
	}
	return nil
}
