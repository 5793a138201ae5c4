package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/progress"
)

var checkPage string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the backend for every supported unit of each page",
	Long: `Requests the description of every unit that has a backend identifier and
reports the ones the backend cannot describe. Exits non-zero when any unit
fails.`,
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

		pages := cat.Pages()
		if checkPage != "" {
			p, err := cat.Page(checkPage)
			if err != nil {
				return err
			}
			pages = []*catalog.Page{p}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var failures []probeFailure
		total := 0
		for _, p := range pages {
			probed, failed := probePage(ctx, p, apis[p.ID], progress.NewReporter(cmd.ErrOrStderr()))
			total += probed
			failures = append(failures, failed...)
		}

		out := cmd.OutOrStdout()
		if len(failures) == 0 {
			fmt.Fprintf(out, "all %d units reachable\n", total)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tUNIT\tID\tERROR")
		for _, f := range failures {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", f.page, f.unit.Name, f.unit.ID, f.err)
		}
		w.Flush()
		return errors.Newf("%d of %d units unreachable", len(failures), total)
	},
}

type probeFailure struct {
	page string
	unit catalog.Unit
	err  error
}

// probePage requests info for every supported unit of p and returns how
// many were probed and which failed.
func probePage(ctx context.Context, p *catalog.Page, api backend.API, r progress.Reporter) (int, []probeFailure) {
	var units []catalog.Unit
	for _, u := range p.Units() {
		if u.Supported() {
			units = append(units, u)
		}
	}

	r.Start(len(units), "probing "+p.ID)
	defer r.Finish()

	var failures []probeFailure
	for i, u := range units {
		if _, err := api.Info(ctx, u.ID); err != nil {
			failures = append(failures, probeFailure{page: p.ID, unit: u, err: err})
		}
		r.Update(i+1, u.Name)
	}
	return len(units), failures
}

func init() {
	checkCmd.Flags().StringVar(&checkPage, "page", "", "Only probe this page")
	rootCmd.AddCommand(checkCmd)
}
