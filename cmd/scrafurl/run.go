package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/samvad-hq/scrafurl/internal/app"
	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/pkg/collection"
	"github.com/spf13/cobra"
)

func newRunCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a request collection",
		Long: `Run every request in a YAML or JSON collection in order, journaling
and reporting each exchange.

Examples:
  scrafurl run checks.yaml
  scrafurl run checks.yaml --every 30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := collection.Load(args[0])
			if err != nil {
				return err
			}

			mon, err := app.NewMonitor(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer mon.Close()

			if cmd.Flags().Changed("every") {
				mon.SetInterval(every)
			}
			if mon.Interval() > 0 {
				return mon.Run(cmd.Context(), col)
			}

			out, err := mon.RunOnce(cmd.Context(), col)
			printExchanges(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "repeat the collection at this interval until interrupted")
	return cmd
}

func printExchanges(w io.Writer, exchanges []domain.Exchange) {
	for _, ex := range exchanges {
		printExchange(w, ex)
	}
}

func printExchange(w io.Writer, ex domain.Exchange) {
	mark := color.New(color.FgGreen).Sprint("ok  ")
	if ex.Error != "" {
		mark = color.New(color.FgRed).Sprint("FAIL")
	}
	fmt.Fprintf(w, "%s %-20s %-6s %3d %8s  %s", mark, ex.Name, ex.Method, ex.StatusCode, ex.Duration.Round(time.Millisecond), ex.URL)
	if ex.Error != "" {
		fmt.Fprintf(w, "  (%s)", ex.Error)
	}
	fmt.Fprintln(w)
	for _, v := range ex.Extracted {
		fmt.Fprintf(w, "     %s\n", v)
	}
}
