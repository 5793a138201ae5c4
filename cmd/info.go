package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/controller"
)

var (
	infoPage string
	infoList bool
)

var infoCmd = &cobra.Command{
	Use:   "info [unit]",
	Short: "Describe a unit or prefix, or list a page's units",
	Example: `  circles info --page prefix 킬로
  circles info --page unit --list`,
	Args: cobra.MaximumNArgs(1),
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
		p, err := pageFor(cfg, cat, infoPage)
		if err != nil {
			return err
		}

		if infoList || len(args) == 0 {
			return printUnits(cmd, p)
		}

		u, err := findUnit(p, args[0])
		if err != nil {
			return err
		}

		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		view := newTextView()
		ctrl := controller.New(p, apis[p.ID], view, controller.Options{
			Logger:   log,
			Recorder: store,
		})
		defer ctrl.Close()

		// Committing any value triggers the description lookup.
		if err := ctrl.Confirm(u.Label, "1"); err != nil {
			return err
		}
		ctrl.Wait()

		fmt.Fprintln(cmd.OutOrStdout(), view.Text(controller.RegionExplanation))
		return nil
	},
}

func printUnits(cmd *cobra.Command, p *catalog.Page) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\n", p.Title, p.ID)
	fmt.Fprintln(w, "LABEL\tNAME\tBACKEND ID")
	for _, u := range p.Units() {
		id := u.ID
		if !u.Supported() {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Label, u.Name, id)
	}
	return w.Flush()
}

func init() {
	infoCmd.Flags().StringVar(&infoPage, "page", "", "Page id (default: default_page)")
	infoCmd.Flags().BoolVar(&infoList, "list", false, "List the page's units instead of describing one")
	rootCmd.AddCommand(infoCmd)
}
