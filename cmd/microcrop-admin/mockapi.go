package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/mockapi"
)

func newMockAPICmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve the fixture backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mockapi.NewServer(a.logger.With().Str("component", "mockapi").Logger())
			fmt.Printf("Mock MicroCrop API listening on %s\n", addr)
			fmt.Println("Fixture accounts: admin@microcrop.io/admin123, ops@sahelmutual.example/operator123")
			return http.ListenAndServe(addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	return cmd
}
