package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ncbiRetStart int
	ncbiRetMax   int
	ncbiRetType  string
	ncbiMaxBytes int
	ncbiIDsOnly  bool
)

var ncbiCmd = &cobra.Command{
	Use:   "ncbi",
	Short: "Query the NCBI E-utilities",
}

var ncbiESearchCmd = &cobra.Command{
	Use:   "esearch <db> <term>",
	Short: "Search a database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			c := newNCBIClient()
			if ncbiIDsOnly {
				ids, err := c.ESearchIDs(ctx, args[0], args[1], ncbiRetStart, ncbiRetMax)
				if err != nil {
					return err
				}
				printLines(ids)
				return nil
			}
			result, err := c.ESearch(ctx, args[0], args[1], ncbiRetStart, ncbiRetMax)
			if err != nil {
				return err
			}
			fmt.Print(result)
			return nil
		})
	},
}

var ncbiEFetchCmd = &cobra.Command{
	Use:   "efetch <db> <id>...",
	Short: "Fetch records",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			result, err := newNCBIClient().EFetch(ctx, args[0], args[1:], ncbiRetType, ncbiMaxBytes)
			if err != nil {
				return err
			}
			fmt.Print(result)
			return nil
		})
	},
}

var ncbiESummaryCmd = &cobra.Command{
	Use:   "esummary <db> <id>...",
	Short: "Fetch document summaries",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			result, err := newNCBIClient().ESummary(ctx, args[0], args[1:], ncbiRetStart, ncbiRetMax)
			if err != nil {
				return err
			}
			fmt.Print(result)
			return nil
		})
	},
}

var ncbiELinkCmd = &cobra.Command{
	Use:   "elink <db> <dbfrom> <id>",
	Short: "Find linked records in another database",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			result, err := newNCBIClient().ELink(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Print(result)
			return nil
		})
	},
}

var ncbiCDDCmd = &cobra.Command{
	Use:   "cdd",
	Short: "Download the Conserved Domain Database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			c := newNCBIClient()
			if err := c.CDD(ctx); err != nil {
				return err
			}
			fmt.Printf("CDD unpacked to %s\n", c.CDDDir())
			return nil
		})
	},
}

var ncbiFungiCmd = &cobra.Command{
	Use:   "fungi",
	Short: "List all fungi species with assembled genomes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			species, err := newNCBIClient().AssembledFungiSpecies(ctx)
			if err != nil {
				return err
			}
			printLines(species)
			return nil
		})
	},
}

func init() {
	ncbiCmd.PersistentFlags().IntVar(&ncbiRetStart, "retstart", 0, "index of the first result")
	ncbiCmd.PersistentFlags().IntVar(&ncbiRetMax, "retmax", 20, "maximum amount of results")
	ncbiESearchCmd.Flags().BoolVar(&ncbiIDsOnly, "ids", false, "print matching ids only")
	ncbiEFetchCmd.Flags().StringVar(&ncbiRetType, "rettype", "fasta", "record format")
	ncbiEFetchCmd.Flags().IntVar(&ncbiMaxBytes, "max-bytes", 0, "truncate the result, 0 disables")

	ncbiCmd.AddCommand(ncbiESearchCmd, ncbiEFetchCmd, ncbiESummaryCmd, ncbiELinkCmd, ncbiCDDCmd, ncbiFungiCmd)
}
