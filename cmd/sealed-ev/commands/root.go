// Package commands implements the sealed-ev command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/sealed-ev/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
)

// Execute runs the sealed-ev CLI.
func Execute() error {
	root := &cobra.Command{
		Use:   "sealed-ev",
		Short: "Expected-value estimates for sealed Magic products",
		Long: `sealed-ev combines Scryfall card prices with marketplace sealed-product
listings and a booster collation model to estimate what a box is worth.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgPath != "" {
				cfg, err = config.LoadFrom(cfgPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.App.DebugMode {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.sealed-ev/config.toml)")

	root.AddCommand(updateCmd(), evCmd(), setCmd(), topCardsCmd(), mapCmd())
	return root.Execute()
}
