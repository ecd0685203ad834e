package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/initializ/edgard/client"
	"github.com/initializ/edgard/history"
	"github.com/initializ/edgard/installer"
)

var (
	historyLimit int
	historyURL   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished installation runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyURL, "url", "", "read history from a running control panel instead of the local database")
}

func runHistory(cmd *cobra.Command, args []string) error {
	var (
		runs []installer.RunSummary
		err  error
	)
	if historyURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		runs, err = client.New(historyURL).History(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("fetching run history from %s: %w", historyURL, err)
		}
	} else if runs, err = localHistory(); err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	return printRuns(os.Stdout, runs)
}

func localHistory() ([]installer.RunSummary, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.Path == "" {
		return nil, fmt.Errorf("run history is disabled (history.path is empty)")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	defer func() { _ = store.Close() }()

	return store.List(context.Background(), historyLimit)
}

func printRuns(out io.Writer, runs []installer.RunSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STARTED\tDURATION\tOUTCOME\tEXIT\tERRORS\tPATH\tID\n")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			r.Outcome,
			r.ExitCode,
			r.ErrorCount,
			r.Options.InstallPath,
			r.ID,
		)
	}
	return w.Flush()
}
