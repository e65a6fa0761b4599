package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

func evCmd() *cobra.Command {
	var (
		productID      int
		productName    string
		category       string
		expansionID    int
		sealedPrice    float64
		expansionsPath string
	)

	cmd := &cobra.Command{
		Use:   "ev",
		Short: "Calculate expected value for one sealed product",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, closer, err := newCalculator(expansionsPath)
			if err != nil {
				return err
			}
			defer closer()

			result, err := calc.CalculateEV(cmd.Context(), ev.Product{
				ID:          productID,
				Name:        productName,
				Category:    category,
				ExpansionID: expansionID,
				SealedPrice: sealedPrice,
			})
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Println("no EV available for this product (unmapped expansion or unsupported format)")
				return nil
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&productID, "id", 0, "marketplace product ID")
	cmd.Flags().StringVar(&productName, "name", "", "product name")
	cmd.Flags().StringVar(&category, "category", "Magic Display", "marketplace category name")
	cmd.Flags().IntVar(&expansionID, "expansion", 0, "marketplace expansion ID")
	cmd.Flags().Float64Var(&sealedPrice, "price", 0, "sealed price in EUR")
	cmd.Flags().StringVar(&expansionsPath, "expansions", "", "marketplace expansion catalog JSON (seeds auto-matching)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("expansion")

	return cmd
}

func printResult(r *ev.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "Product\t%s\n", r.ProductName)
	fmt.Fprintf(w, "Set\t%s (%s)\n", r.SetName, r.SetCode)
	fmt.Fprintf(w, "Booster\t%s x%d\n", r.BoosterType, r.BoosterCount)
	fmt.Fprintf(w, "Sealed price\t%.2f EUR\n", r.SealedPrice)
	fmt.Fprintf(w, "Pack EV\t%.2f EUR\n", r.PackEV)
	fmt.Fprintf(w, "Box EV\t%.2f EUR\n", r.BoxEV)
	fmt.Fprintf(w, "EV ratio\t%.2f\n", r.EVRatio)
	fmt.Fprintf(w, "EV difference\t%+.2f EUR\n", r.EVDifference)
	fmt.Fprintf(w, "Confidence\t%.0f%%\n", r.Confidence*100)
	fmt.Fprintf(w, "Variance\t%.2f / %.2f / %.2f EUR\n", r.Variance.Min, r.Variance.Median, r.Variance.Max)
	fmt.Fprintf(w, "Mythic contribution\t%.2f EUR/pack\n", r.Breakdown.MythicContribution)
	fmt.Fprintf(w, "Rare contribution\t%.2f EUR/pack\n", r.Breakdown.RareContribution)
	fmt.Fprintf(w, "Uncommon contribution\t%.2f EUR/pack\n", r.Breakdown.UncommonContribution)
	fmt.Fprintf(w, "Common contribution\t%.2f EUR/pack\n", r.Breakdown.CommonContribution)
	fmt.Fprintf(w, "Foil contribution\t%.2f EUR/pack\n", r.Breakdown.FoilContribution)

	if len(r.TopCards) > 0 {
		fmt.Fprintln(w, "\nTop cards\tPrice\tShare")
		for _, card := range r.TopCards {
			fmt.Fprintf(w, "%s (%s)\t%.2f EUR\t%.1f%%\n", card.Name, card.Rarity, card.Price, card.Contribution)
		}
	}
}
