package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize circles configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the landing page, the backend of each page and the server port, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
