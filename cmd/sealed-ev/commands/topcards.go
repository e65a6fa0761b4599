package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func topCardsCmd() *cobra.Command {
	var (
		expansionID    int
		limit          int
		minPrice       float64
		expansionsPath string
	)

	cmd := &cobra.Command{
		Use:   "topcards",
		Short: "List the highest-value cards for an expansion",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, closer, err := newCalculator(expansionsPath)
			if err != nil {
				return err
			}
			defer closer()

			cards, err := calc.GetTopValueCards(cmd.Context(), expansionID, limit, minPrice)
			if err != nil {
				return err
			}
			if cards == nil {
				fmt.Println("expansion is unmapped")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "Card\tRarity\t#\tPrice\tShare")
			for _, card := range cards {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f EUR\t%.1f%%\n",
					card.Name, card.Rarity, card.CollectorNumber, card.Price, card.Contribution)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&expansionID, "expansion", 0, "marketplace expansion ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum cards to list")
	cmd.Flags().Float64Var(&minPrice, "min-price", 1.0, "minimum card price in EUR")
	cmd.Flags().StringVar(&expansionsPath, "expansions", "", "marketplace expansion catalog JSON (seeds auto-matching)")
	_ = cmd.MarkFlagRequired("expansion")

	return cmd
}
