package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobsift/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show history store stats",
	Long:  "Reads the history file and prints how many postings have been seen and when.",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := history.Load(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load history: %v\n", err)
		os.Exit(1)
	}

	entries := store.Entries()
	fmt.Printf("History file: %s\n", cfg.HistoryPath)
	fmt.Printf("Postings seen: %d\n", len(entries))
	if len(entries) == 0 {
		return nil
	}

	oldest := entries[0]
	newest := entries[0]
	for _, e := range entries[1:] {
		if e.FirstSeen.Before(oldest.FirstSeen) {
			oldest = e
		}
		if e.LastSeen.After(newest.LastSeen) {
			newest = e
		}
	}
	fmt.Printf("First observation: %s\n", oldest.FirstSeen.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Last observation:  %s\n", newest.LastSeen.Format("2006-01-02 15:04:05 MST"))
	return nil
}
