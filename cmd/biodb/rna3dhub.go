package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/rna3dhub"
)

var (
	rna3dhubResolution float64
	rna3dhubFormat     string
)

var rna3dhubCmd = &cobra.Command{
	Use:   "rna3dhub",
	Short: "Query the RNA 3D Hub",
}

var rna3dhubClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Print the equivalence classes of the non-redundant list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(func(ctx context.Context) error {
			clusters, err := newRNA3DHubClient().Clusters(ctx, rna3dhubResolution)
			if err != nil {
				return err
			}
			return writeTable(os.Stdout, clusters, rna3dhubFormat)
		})
	},
}

func init() {
	rna3dhubClustersCmd.Flags().Float64Var(&rna3dhubResolution, "resolution", rna3dhub.DefaultResolution, "resolution threshold in Ångström")
	rna3dhubClustersCmd.Flags().StringVar(&rna3dhubFormat, "format", "tsv", "table format: tsv, csv, json, yaml, cbor or msgpack")
	rna3dhubCmd.AddCommand(rna3dhubClustersCmd)
}
