package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/history"
)

var (
	historyPage    string
	historySession string
	historyOutcome string
	historyLimit   int
	pruneOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent unit lookups and conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		entries, err := store.Query(context.Background(), history.Filter{
			Page:      historyPage,
			SessionID: historySession,
			Outcome:   history.Outcome(historyOutcome),
			Limit:     historyLimit,
		})
		if err != nil {
			return err
		}

		printHistory(cmd, entries)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete history entries older than a duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		deleted, err := store.DeleteBefore(context.Background(), time.Now().Add(-pruneOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", deleted)
		return nil
	},
}

func printHistory(cmd *cobra.Command, entries []history.Entry) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPAGE\tKIND\tFROM\tTO\tVALUE\tOUTCOME\tRESULT")
	for _, e := range entries {
		result := e.Result
		if e.Error != "" {
			result = e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime),
			e.Page, e.Kind, e.FromName, e.ToName, e.Value, e.Outcome, result,
		)
	}
	w.Flush()
}

func init() {
	historyCmd.Flags().StringVar(&historyPage, "page", "", "Only entries of this page")
	historyCmd.Flags().StringVar(&historySession, "session", "", "Only entries of this session")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "Only entries with this outcome (ok, unmapped, invalid_number, failed, cancelled)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
	historyPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "Delete entries older than this")
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}
