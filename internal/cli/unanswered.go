package cli

import (
	"mailscrape/internal/report"
	"mailscrape/internal/threading"

	"github.com/spf13/cobra"
)

func newUnansweredCmd() *cobra.Command {
	var (
		flags    queryFlags
		verbose  bool
		strategy string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "unanswered",
		Short: "List emails in the period that never received a reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, flags.hostOverride(cmd))
			if err != nil {
				return err
			}

			chosen, err := threading.ParseStrategy(stringSetting(cmd, "strategy", strategy, cfg.Defaults.Strategy))
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(stringSetting(cmd, "output", output, cfg.Defaults.Output))
			if err != nil {
				return err
			}

			resp, err := newClient(cfg, log).FetchStats(cmd.Context(), flags.query(cmd, cfg))
			if err != nil {
				return err
			}

			return renderStats(cmd, resp, report.Options{
				Unanswered: true,
				Verbose:    verbose,
				Strategy:   chosen,
				Format:     format,
			}, log)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print full details for each email")
	cmd.Flags().StringVar(&strategy, "strategy", string(threading.StrategyFlat), "How unanswered emails are found: flat or tree")
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatText), "Output format: text, json, or yaml")

	return cmd
}
