package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"davload/internal/collector"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of runs to list (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range records {
		rate := "n/a"
		if r.RequestsPerSec > 0 {
			rate = fmt.Sprintf("%.1f req/s", r.RequestsPerSec)
		}

		fmt.Printf("%s  %s\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.BaseURL)
		fmt.Printf("    %d requests, concurrency %d, engine %s\n", r.Requests, r.Concurrency, r.Engine)
		fmt.Printf("    completed %d (%d ok, %d failed) in %s, %s\n",
			r.Completed, r.Successful, r.Failed, collector.FormatDuration(r.Duration), rate)
	}

	return nil
}
