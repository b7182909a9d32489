package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/config"
	"github.com/safing/biodb/info"
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/utils"
)

var version = "0.1.0"

var (
	dataRoot *utils.DirStructure

	dataDir      string
	configFile   string
	logLevel     string
	pkgLogLevels string
)

var rootCmd = &cobra.Command{
	Use:   "biodb",
	Short: "Mirror and query RNA databases",
	Long: `biodb downloads the bulk dumps of Rfam and splits them into one record
per family, and queries the PDB, the NCBI and the RNA 3D Hub.`,
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Shutdown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataDir, "data", "biodb-data", "set data directory")
	flags.StringVar(&configFile, "config", "", "set config file (default <data>/config.json)")
	flags.StringVar(&logLevel, "log", "", "set log level to [trace|debug|info|warning|error|critical]")
	flags.StringVar(&pkgLogLevels, "plog", "", "set log level of packages: splitter=trace,rfam=debug")

	rootCmd.AddCommand(
		versionCmd,
		configCmd,
		splitCmd,
		rfamCmd,
		pdbCmd,
		ncbiCmd,
		rna3dhubCmd,
		serveCmd,
	)
}

func initialize(cmd *cobra.Command, args []string) error {
	info.Set("biodb", version, "GPLv3")

	if err := registerOptions(); err != nil {
		return err
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	dataRoot = utils.NewDirStructure(absDataDir, 0o755)
	dataRoot.ChildDir("cache", 0o755)
	dataRoot.ChildDir("rfam", 0o755)
	if err := dataRoot.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if configFile == "" {
		configFile = filepath.Join(dataRoot.Path, "config.json")
	}
	config.SetFilePath(configFile)
	if err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logLevel
	if level == "" {
		level = cfgLogLevel()
	}
	log.SetFlags(level, pkgLogLevels)
	if err := log.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logging: %s\n", err)
	}
	return nil
}
