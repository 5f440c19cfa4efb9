package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/offercal/internal/calendar"
	"github.com/nhle/offercal/internal/collect"
	"github.com/nhle/offercal/internal/model"
)

func newCalendarCommand(a *app) *cobra.Command {
	var outputPath, jsonPath, dbPath string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Render offers as an HTML calendar",
		Long: `Collect offers (from a snapshot when --json or --db points at an existing
one, otherwise from the mailbox) and write an HTML table with one row per
Monday-to-Sunday week.`,
		Example: `  offercal calendar --username me@gmail.com --output offers.html --cache ~/.cache/offercal`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			offerStore, closeStore, err := a.openOfferStore(jsonPath, dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			collector := a.newCollector(a.cfg.CacheDir, false)
			offers, err := collect.Acquire(cmd.Context(), offerStore, collector)
			if err != nil {
				return err
			}

			model.SortOffers(offers)
			weeks, err := calendar.Build(offers)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := calendar.WriteHTML(&buf, weeks); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
				return &model.FileSystemError{Op: "writing calendar", Path: outputPath, Err: err}
			}

			a.logger.Info().
				Str("path", outputPath).
				Int("offers", len(offers)).
				Int("weeks", len(weeks)).
				Msg("wrote calendar")
			printCalendarSummary(a.stderr, len(offers), len(weeks), outputPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outputPath, "output", "", "Destination HTML file")
	flags.String("cache", "", "Per-message cache directory")
	flags.StringVar(&jsonPath, "json", "", "JSON snapshot to load from or save to")
	flags.StringVar(&dbPath, "db", "", "SQLite snapshot to load from or save to")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("json", "db")
	a.bindFlags(flags, map[string]string{"cache_dir": "cache"})

	return cmd
}
