package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/splitter"
	"github.com/safing/biodb/storage"
)

var (
	splitMode   string
	splitExt    string
	splitOut    string
	splitPrefix string
)

var splitCmd = &cobra.Command{
	Use:   "split <dump>",
	Short: "Split a multi-record dump into one record per accession",
	Long: `Split reads a Stockholm alignment dump or a covariance model dump, which
may be gzip compressed, and stores every record as <out>/<prefix><accession><ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := splitter.ParseMode(splitMode)
		if err != nil {
			return err
		}
		return runCommand(func(ctx context.Context) error {
			return split(ctx, args[0], mode)
		})
	},
}

func init() {
	flags := splitCmd.Flags()
	flags.StringVar(&splitMode, "mode", "alignment", "record format: alignment or cm")
	flags.StringVar(&splitExt, "ext", ".sto", "extension of the stored records")
	flags.StringVar(&splitOut, "out", "records", "output storage location")
	flags.StringVar(&splitPrefix, "prefix", "", "key prefix of the stored records")
}

func split(ctx context.Context, dumpPath string, mode splitter.Mode) error {
	file, err := os.Open(dumpPath)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	reader, err := fetch.Unpack(file, dumpPath)
	if err != nil {
		return err
	}
	defer reader.Close() //nolint:errcheck

	store, err := storage.Open("split", cfgStorageType(), splitOut)
	if err != nil {
		return err
	}
	defer store.Shutdown() //nolint:errcheck

	sink := &storage.Prefixed{
		DB:        store,
		Prefix:    splitPrefix,
		Extension: splitExt,
	}
	result, err := splitter.SplitReader(ctx, reader, mode, sink)
	if err != nil {
		return err
	}
	fmt.Printf("split %d %s records from %d lines into %s\n", result.Records(), mode, result.Lines, splitOut)
	return nil
}
