package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/scrafurl/internal/app"
	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/spf13/cobra"
)

func newHistoryCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently journaled exchanges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if t := strings.ToLower(strings.TrimSpace(cfg.JournalType)); t == "" || t == "none" || t == "disabled" {
				return fmt.Errorf("journal is disabled (set JOURNAL_TYPE=bbolt)")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			journal, err := app.OpenJournal(cfg, log)
			if err != nil {
				return err
			}
			defer journal.Close()

			recent, err := journal.Recent(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, ex := range recent {
				fmt.Fprintf(out, "%s  ", ex.At.Local().Format(time.DateTime))
				printExchange(out, ex)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of exchanges to list")
	return cmd
}
