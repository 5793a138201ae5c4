package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/controller"
)

var convertPage string

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from> <to>",
	Short: "Convert a value between two units of a page",
	Long: `Drives a page the way a browser would: commits <value> on the <from>
circle, then clicks the <to> circle, and prints both regions. Units are given
by circle label or display name.`,
	Example: `  circles convert --page unit 10 미터 피트
  circles convert --page prefix 1 k M`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, fromRef, toRef := args[0], args[1], args[2]

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
		p, err := pageFor(cfg, cat, convertPage)
		if err != nil {
			return err
		}
		from, err := findUnit(p, fromRef)
		if err != nil {
			return err
		}
		to, err := findUnit(p, toRef)
		if err != nil {
			return err
		}
		if from.Label == to.Label {
			return errors.Wrapf(catalog.ErrSameUnit, "%s", from.Name)
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

		if err := ctrl.Confirm(from.Label, value); err != nil {
			return err
		}
		if _, ok := ctrl.Selection(); !ok {
			return errors.New("value must not be blank")
		}
		ctrl.Wait()
		if err := ctrl.Select(to.Label); err != nil {
			return err
		}
		ctrl.Wait()

		out := cmd.OutOrStdout()
		if text := view.Text(controller.RegionExplanation); text != "" {
			fmt.Fprintln(out, text)
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, view.Text(controller.RegionResult))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertPage, "page", "", "Page id (default: default_page)")
	rootCmd.AddCommand(convertCmd)
}
