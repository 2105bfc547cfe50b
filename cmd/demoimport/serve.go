package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteforge/demoimport/internal/httpapi"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the import API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags.configPath)
			if err != nil {
				return err
			}
			defer a.close()

			handler := httpapi.NewHandler(a.pipeline, a.cfg.AdminToken, a.log)

			server := &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
				// No write timeout: import runs are long and must not be cut
				// off by the server.
			}

			a.log.WithFields(map[string]any{"addr": a.cfg.Listen}).Info("serving import API")
			return server.ListenAndServe()
		},
	}
}
