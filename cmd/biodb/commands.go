package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/safing/biodb/formats/dsd"
	"github.com/safing/biodb/run"
	"github.com/safing/biodb/table"
)

var (
	printStackOnExit bool

	errFailed = errors.New("command failed")
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&printStackOnExit, "print-stack-on-exit", false, "prints the stack before of shutting down")
}

// runCommand executes fn with interrupt handling.
func runCommand(fn func(ctx context.Context) error) error {
	code := run.Run(run.Options{PrintStackOnExit: printStackOnExit}, fn)
	if code != 0 {
		return errFailed
	}
	return nil
}

func writeTable(w io.Writer, t *table.Table, format string) error {
	switch strings.ToLower(format) {
	case "tsv", "":
		return t.WriteTSV(w)
	case "csv":
		return t.WriteCSV(w)
	default:
		serialization, ok := dsd.MimeTypeToFormat[strings.ToLower(format)]
		if !ok {
			return fmt.Errorf("unsupported output format %q", format)
		}
		data, err := dsd.DumpWithoutIdentifier(t.Records(), serialization)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

func printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(os.Stdout, line)
	}
}
