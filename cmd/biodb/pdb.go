package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/pdb"
)

var pdbQuery = pdb.NewQuery()

var pdbCmd = &cobra.Command{
	Use:   "pdb",
	Short: "Query the Protein Data Bank",
}

var pdbEntryCmd = &cobra.Command{
	Use:   "entry <id>",
	Short: "Print an entry in PDB format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			entry, err := newPDBClient().GetEntry(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Print(entry)
			return nil
		})
	},
}

var pdbQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search for structures and print their ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			ids, err := newPDBClient().Query(ctx, pdbQuery)
			if err != nil {
				return err
			}
			printLines(ids)
			return nil
		})
	},
}

func init() {
	flags := pdbQueryCmd.Flags()
	flags.StringVar(&pdbQuery.MinResolution, "min-res", pdb.DefaultMinResolution, "minimum resolution")
	flags.StringVar(&pdbQuery.MaxResolution, "max-res", pdb.DefaultMaxResolution, "maximum resolution")
	flags.StringVar(&pdbQuery.MinDate, "min-date", "", "minimum release date (YYYY-MM-DD)")
	flags.StringVar(&pdbQuery.MaxDate, "max-date", "", "maximum release date (YYYY-MM-DD)")
	flags.StringSliceVar(&pdbQuery.Keywords, "keyword", nil, "keywords")
	flags.StringSliceVar(&pdbQuery.Authors, "author", nil, "authors")
	flags.StringSliceVar(&pdbQuery.PDBIDs, "id", nil, "PDB ids")
	flags.StringSliceVar(&pdbQuery.TitleContains, "title", nil, "title fragments")
	flags.StringVar(&pdbQuery.ContainsRNA, "rna", pdb.Yes, "contains RNA (Y/N)")
	flags.StringVar(&pdbQuery.ContainsProtein, "protein", pdb.Yes, "contains protein (Y/N)")
	flags.StringVar(&pdbQuery.ContainsDNA, "dna", pdb.No, "contains DNA (Y/N)")
	flags.StringVar(&pdbQuery.ContainsHybrid, "hybrid", pdb.No, "contains DNA/RNA hybrids (Y/N)")
	flags.StringVar(&pdbQuery.ExperimentalMethod, "method", pdb.DefaultExperimentalMethod, "experimental method")

	pdbCmd.AddCommand(pdbEntryCmd, pdbQueryCmd)
}
