package main

import (
	"github.com/spf13/cobra"

	"github.com/namelink/internal/audit"
	"github.com/namelink/internal/web"
)

func createServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [reference.csv]",
		Short: "Serve lookups and single-record resolution over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			references, err := loadReferences(args[0], false)
			if err != nil {
				return err
			}
			engine, err := buildEngine(references)
			if err != nil {
				return err
			}

			var tracker *audit.Tracker
			if settings.Database.Driver != "" {
				t, conn, err := openTracker(cmd.Context())
				if err != nil {
					return err
				}
				defer conn.Close()
				tracker = t
			}

			server, err := web.NewServer(web.ConfigFromSettings(settings), engine, tracker)
			if err != nil {
				return err
			}
			return server.Start()
		},
	}
}
