package commands

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/sealed-ev/internal/scryfall"
	"github.com/ramonehamilton/sealed-ev/internal/storage"
)

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Download the Scryfall bulk card dataset into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := scryfall.NewClient(cfg.Scryfall.UserAgent)
			downloader := scryfall.NewDownloader(client, logger)

			cards, err := downloader.FetchCards(ctx)
			if err != nil {
				return err
			}

			db, err := storage.Open(storage.DefaultConfig(cfg.Data.DatabasePath))
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.ReplaceSnapshot(ctx, cards); err != nil {
				return err
			}

			logger.Info("card snapshot updated", "cards", len(cards))
			return nil
		},
	}
}
