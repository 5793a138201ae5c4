package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "circles",
	Short: "Unit and prefix conversion pages backed by a conversion API",
	Long: `circles serves conversion pages made of clickable circles. Commit a
value on one circle, click another and the conversion backend's result and
formula appear on the page. The same pages are reachable from the command
line and through MCP for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".circles.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
