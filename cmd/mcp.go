package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpserver "github.com/sp-meter/circles/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio exposing the
list_units, unit_info and convert_units tools over the configured pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return errors.Wrap(err, "creating logger")
		}
		defer log.Sync()

		cat, apis, err := buildBackends(cfg, log)
		if err != nil {
			return err
		}

		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		log.Infow("circles MCP server started on stdio", "pages", len(cat.Pages()))

		srv := mcpserver.NewServer(cat, apis, mcpserver.Options{
			Logger:      log,
			Recorder:    store,
			DefaultPage: cfg.DefaultPage,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
