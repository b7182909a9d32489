package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all options and their values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, option := range config.Options() {
			marker := " "
			if option.IsSetByUser() {
				marker = "*"
			}
			fmt.Printf("%s %-20s %-9s %v\n", marker, option.Key, option.TypeName(), option.Value())
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set an option, string arrays are comma separated",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.SetFromString(args[0], args[1])
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Reset an option to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.SetConfigOption(strings.TrimSpace(args[0]), nil)
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd, configResetCmd)
}
