package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/safing/biodb/api"
	"github.com/safing/biodb/rfam"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored records over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		address := serveAddress
		if address == "" {
			address = cfgAPIListen()
		}

		server, err := api.NewServer(address)
		if err != nil {
			return err
		}
		return withRfam(func(ctx context.Context, c *rfam.Client) error {
			if err := server.RegisterRfamEndpoints(c); err != nil {
				return err
			}
			return server.Serve(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "listen", "", "override api listen address")
}
