package main

import (
	"os"

	_ "github.com/safing/biodb/storage/badger"
	_ "github.com/safing/biodb/storage/bbolt"
	_ "github.com/safing/biodb/storage/fstree"
	_ "github.com/safing/biodb/storage/hashmap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
