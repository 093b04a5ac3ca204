package cli

import (
	"log/slog"

	"mailscrape/internal/ponymail"
	"mailscrape/internal/report"
	"mailscrape/internal/stats"
	"mailscrape/internal/threading"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		flags            queryFlags
		showEmails       bool
		showThreads      bool
		showDaily        bool
		showAverages     bool
		showUnanswered   bool
		showParticipants bool
		verbose          bool
		strategy         string
		output           string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch and summarize mailing list activity",
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
				Header:       true,
				Emails:       showEmails,
				Threads:      showThreads,
				Daily:        showDaily,
				Averages:     showAverages,
				Summary:      true,
				Unanswered:   showUnanswered,
				Participants: showParticipants,
				Verbose:      verbose,
				Strategy:     chosen,
				Format:       format,
			}, log)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&showEmails, "show-emails", false, "List every email in the period")
	cmd.Flags().BoolVar(&showThreads, "show-threads", false, "List top-level threads")
	cmd.Flags().BoolVar(&showDaily, "show-daily", false, "Show the activity table")
	cmd.Flags().BoolVar(&showAverages, "show-averages", false, "Show per-day averages")
	cmd.Flags().BoolVar(&showUnanswered, "show-unanswered", false, "List emails nobody replied to")
	cmd.Flags().BoolVar(&showParticipants, "show-participants", false, "List participants by message count")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print full details for listed emails and threads")
	cmd.Flags().StringVar(&strategy, "strategy", string(threading.StrategyFlat), "How unanswered emails are found: flat or tree")
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatText), "Output format: text, json, or yaml")

	return cmd
}

func renderStats(cmd *cobra.Command, resp *ponymail.Response, opts report.Options, log *slog.Logger) error {
	s := stats.FromResponse(resp, log)
	a := stats.Analyze(s)
	return report.Render(cmd.OutOrStdout(), a, s, opts, log)
}
