package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

func mapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Inspect and maintain expansion mappings",
	}
	cmd.AddCommand(mapAddCmd(), mapListCmd())
	return cmd
}

func mapAddCmd() *cobra.Command {
	var (
		expansionID int
		setCode     string
		setName     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a manual expansion mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapper := ev.NewMapper(ev.NewMappingStore(cfg.Data.MappingPath), logger)
			if err := mapper.Load(); err != nil {
				return err
			}

			mapper.AddManualMapping(expansionID, setCode, setName)
			if err := mapper.Save(); err != nil {
				return err
			}

			fmt.Printf("mapped expansion %d -> %s\n", expansionID, setCode)
			return nil
		},
	}

	cmd.Flags().IntVar(&expansionID, "expansion", 0, "marketplace expansion ID")
	cmd.Flags().StringVar(&setCode, "set", "", "set code (e.g. BLB)")
	cmd.Flags().StringVar(&setName, "name", "", "set display name")
	_ = cmd.MarkFlagRequired("expansion")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func mapListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known expansion mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapper := ev.NewMapper(ev.NewMappingStore(cfg.Data.MappingPath), logger)
			if err := mapper.Load(); err != nil {
				return err
			}

			mappings := mapper.Mappings()
			sort.Slice(mappings, func(i, j int) bool {
				return mappings[i].ExpansionID < mappings[j].ExpansionID
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "Expansion\tSet\tName\tConfidence\tSource")
			for _, m := range mappings {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n",
					m.ExpansionID, m.SetCode, m.SetName, m.Confidence, m.Source)
			}
			return nil
		},
	}
}
