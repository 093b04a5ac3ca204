package cli

import (
	"log/slog"
	"net/http"

	"mailscrape/internal/config"
	"mailscrape/internal/ponymail"

	"github.com/spf13/cobra"
)

// queryFlags are shared by every command that talks to stats.lua. Flags left
// unset fall back to the config file.
type queryFlags struct {
	startDate string
	endDate   string
	list      string
	domain    string
	host      string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringVarP(&f.startDate, "start-date", "s", "", "Start date in YYYY-MM-DD format")
	cmd.Flags().StringVarP(&f.endDate, "end-date", "e", "", "End date in YYYY-MM-DD format")
	cmd.Flags().StringVarP(&f.list, "list", "l", defaults.Defaults.List, "Mailing list name")
	cmd.Flags().StringVarP(&f.domain, "domain", "d", defaults.Defaults.Domain, "Mailing list domain")
	cmd.Flags().StringVarP(&f.host, "host", "H", defaults.API.Host, "Archive host")
	_ = cmd.MarkFlagRequired("start-date")
	_ = cmd.MarkFlagRequired("end-date")
}

// hostOverride returns the --host value only when it was given explicitly.
func (f *queryFlags) hostOverride(cmd *cobra.Command) string {
	if cmd.Flags().Changed("host") {
		return f.host
	}
	return ""
}

func (f *queryFlags) query(cmd *cobra.Command, cfg config.Config) ponymail.Query {
	q := ponymail.Query{
		List:      cfg.Defaults.List,
		Domain:    cfg.Defaults.Domain,
		StartDate: f.startDate,
		EndDate:   f.endDate,
	}
	if cmd.Flags().Changed("list") {
		q.List = f.list
	}
	if cmd.Flags().Changed("domain") {
		q.Domain = f.domain
	}
	return q
}

func newClient(cfg config.Config, log *slog.Logger) *ponymail.Client {
	opts := []ponymail.Option{
		ponymail.WithScheme(cfg.API.Scheme),
		ponymail.WithLogger(log),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, ponymail.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	}
	if cfg.Auth.Session != "" {
		log.Debug("using ponymail session", "source", cfg.Auth.SessionSource)
		opts = append(opts, ponymail.WithSessionCookie(cfg.Auth.Session))
	}
	return ponymail.NewClient(cfg.API.Host, opts...)
}

// stringSetting returns the flag value when set on the command line,
// otherwise the configured value.
func stringSetting(cmd *cobra.Command, name, flagValue, configured string) string {
	if cmd.Flags().Changed(name) || configured == "" {
		return flagValue
	}
	return configured
}
