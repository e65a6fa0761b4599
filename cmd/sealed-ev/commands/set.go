package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func setCmd() *cobra.Command {
	var (
		expansionID    int
		expansionsPath string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Show set-wide value statistics for an expansion",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, closer, err := newCalculator(expansionsPath)
			if err != nil {
				return err
			}
			defer closer()

			result, err := calc.CalculateSetEVs(cmd.Context(), expansionID)
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Println("expansion is unmapped or has no card data")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Set\t%s (%s)\n", result.SetName, result.SetCode)
			fmt.Fprintf(w, "Cards\t%d (%d priceable)\n", result.TotalUniqueCards, result.PriceableCards)
			fmt.Fprintf(w, "Total value\t%.2f EUR\n", result.TotalSetValue)
			fmt.Fprintf(w, "Avg card price\t%.2f EUR\n", result.AvgCardPrice)

			fmt.Fprintln(w, "\nRarity\tCount\tAvg\tTotal")
			fmt.Fprintf(w, "Mythic\t%d\t%.2f\t%.2f\n", result.Mythics.Count, result.Mythics.AvgPrice, result.Mythics.TotalValue)
			fmt.Fprintf(w, "Rare\t%d\t%.2f\t%.2f\n", result.Rares.Count, result.Rares.AvgPrice, result.Rares.TotalValue)
			fmt.Fprintf(w, "Uncommon\t%d\t%.2f\t%.2f\n", result.Uncommons.Count, result.Uncommons.AvgPrice, result.Uncommons.TotalValue)
			fmt.Fprintf(w, "Common\t%d\t%.2f\t%.2f\n", result.Commons.Count, result.Commons.AvgPrice, result.Commons.TotalValue)

			if len(result.TopCards) > 0 {
				fmt.Fprintln(w, "\nTop cards\tPrice\tShare")
				for _, card := range result.TopCards {
					fmt.Fprintf(w, "%s (%s)\t%.2f EUR\t%.1f%%\n", card.Name, card.Rarity, card.Price, card.Contribution)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&expansionID, "expansion", 0, "marketplace expansion ID")
	cmd.Flags().StringVar(&expansionsPath, "expansions", "", "marketplace expansion catalog JSON (seeds auto-matching)")
	_ = cmd.MarkFlagRequired("expansion")

	return cmd
}
