package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/info"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := info.CheckVersion(); err != nil {
			return err
		}
		fmt.Println(info.FullVersion())
		return nil
	},
}
