package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/offercal/internal/collect"
)

func newSnapshotCommand(a *app) *cobra.Command {
	var jsonPath, dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect offers and save them for later runs",
		Long: `Collect offers from the mailbox and save them to a JSON snapshot (--json)
or a SQLite database (--db). When the snapshot already exists it is loaded
instead and the mail server is not contacted.`,
		Example: `  offercal snapshot --username me@gmail.com --json offers.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			offerStore, closeStore, err := a.openOfferStore(jsonPath, dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			offers, err := collect.Acquire(cmd.Context(), offerStore, a.newCollector("", true))
			if err != nil {
				return err
			}

			printSnapshotSummary(a.stderr, len(offers), storeLocation(offerStore))
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "JSON snapshot path")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite snapshot path")
	cmd.MarkFlagsMutuallyExclusive("json", "db")

	return cmd
}
