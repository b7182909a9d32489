package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/rfam"
	"github.com/safing/biodb/splitter"
	"github.com/safing/biodb/utils"
)

var (
	rfamEntryType  string
	rfamEntryNSE   bool
	rfamEntryFasta bool
	rfamFormat     string
)

var rfamCmd = &cobra.Command{
	Use:   "rfam",
	Short: "Mirror and query Rfam",
}

var rfamGenerateCmd = &cobra.Command{
	Use:       "generate [seed|full|cm|all]",
	Short:     "Download the Rfam dumps and store one record per family",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"seed", "full", "cm", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "all"
		if len(args) > 0 {
			what = args[0]
		}
		if !utils.StringInSlice(what, cmd.ValidArgs) {
			return fmt.Errorf("invalid argument %q, expected one of %v", what, cmd.ValidArgs)
		}
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			if what == "all" {
				results, err := c.GenerateAll(ctx)
				printResults(results)
				return err
			}

			kind, err := rfam.ParseKind(what)
			if err != nil {
				return err
			}
			result, err := c.Generate(ctx, kind)
			if result != nil {
				printResults(map[rfam.Kind]*splitter.Result{kind: result})
			}
			return err
		})
	},
}

var rfamEntryCmd = &cobra.Command{
	Use:   "entry <accession>",
	Short: "Print the alignment of a family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := rfam.ParseKind(rfamEntryType)
		if err != nil {
			return err
		}
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			var (
				data []byte
				err  error
			)
			switch {
			case kind == rfam.CM:
				data, err = c.Record(args[0], kind)
			case rfamEntryFasta:
				data, err = c.EntryFasta(ctx, args[0], kind, rfamEntryNSE)
			default:
				data, err = c.GetEntry(ctx, args[0], kind, rfamEntryNSE)
			}
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		})
	},
}

var rfamConsensusCmd = &cobra.Command{
	Use:   "consensus <accession>",
	Short: "Print the consensus sequence of a family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			consensus, err := c.ConsensusSequence(ctx, args[0])
			if err != nil {
				return err
			}
			if consensus == nil {
				return fmt.Errorf("%s has no reference annotation", args[0])
			}
			fmt.Printf(">%s\n%s\n", consensus.Name, consensus.Residues)
			return nil
		})
	},
}

var rfamListCmd = &cobra.Command{
	Use:   "list <seed|full|cm>",
	Short: "List the accessions of all stored records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := rfam.ParseKind(args[0])
		if err != nil {
			return err
		}
		return withRfam(func(_ context.Context, c *rfam.Client) error {
			accessions, err := c.Accessions(kind)
			if err != nil {
				return err
			}
			printLines(accessions)
			return nil
		})
	},
}

var rfamFamiliesCmd = &cobra.Command{
	Use:   "families",
	Short: "Print the details of all families",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			families, err := c.CachedFamiliesDetails(ctx)
			if err != nil {
				return err
			}
			return writeTable(os.Stdout, families, rfamFormat)
		})
	},
}

var rfamStructuresCmd = &cobra.Command{
	Use:   "structures",
	Short: "Print the 3D structure regions of all families",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			structures, err := c.FamiliesWithStructures(ctx)
			if err != nil {
				return err
			}
			for _, accession := range rfam.StructuredFamilies(structures) {
				for _, region := range structures[accession] {
					fmt.Printf("%s\t%s\t%s\t%s-%s\t%s\t%s-%s\n",
						accession, region.PDBID, region.Chain, region.Start3D, region.End3D,
						region.NCBIID, region.NCBIStart, region.NCBIEnd,
					)
				}
			}
			return nil
		})
	},
}

var rfamGenomesCmd = &cobra.Command{
	Use:   "genomes",
	Short: "Print all genomes annotated by Rfam",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			genomes, err := c.GenomicEntries(ctx)
			if err != nil {
				return err
			}
			return writeTable(os.Stdout, genomes, rfamFormat)
		})
	},
}

func init() {
	rfamEntryCmd.Flags().StringVar(&rfamEntryType, "type", "seed", "record type: seed, full or cm")
	rfamEntryCmd.Flags().BoolVar(&rfamEntryNSE, "nse", false, "request name/start-end sequence labels (website only)")
	rfamEntryCmd.Flags().BoolVar(&rfamEntryFasta, "fasta", false, "print the aligned sequences in FASTA format")
	rfamCmd.PersistentFlags().StringVar(&rfamFormat, "format", "tsv", "table format: tsv, csv, json, yaml, cbor or msgpack")

	rfamCmd.AddCommand(
		rfamGenerateCmd,
		rfamEntryCmd,
		rfamConsensusCmd,
		rfamListCmd,
		rfamFamiliesCmd,
		rfamStructuresCmd,
		rfamGenomesCmd,
	)
}

func withRfam(fn func(ctx context.Context, c *rfam.Client) error) error {
	c, store, err := newRfamClient()
	if err != nil {
		return err
	}
	defer store.Shutdown() //nolint:errcheck

	return runCommand(func(ctx context.Context) error {
		return fn(ctx, c)
	})
}

func printResults(results map[rfam.Kind]*splitter.Result) {
	kinds := make([]string, 0, len(results))
	for kind := range results {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		result := results[rfam.Kind(kind)]
		fmt.Printf("%s: %d records from %d lines\n", kind, result.Records(), result.Lines)
	}
}
