package cmd

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
	"github.com/sp-meter/circles/internal/controller"
	"github.com/sp-meter/circles/internal/db"
	"github.com/sp-meter/circles/internal/history"
	"github.com/sp-meter/circles/internal/logger"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "loading config"),
			"Run `circles init` to create a config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", cfgFile)
	}
	return cfg, nil
}

// newLogger builds the logger for a command; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.New(cfg.Log.JSON, level)
}

// buildBackends creates the page catalog and one rate-limited backend client
// per page.
func buildBackends(cfg *config.Config, log *zap.SugaredLogger) (*catalog.Catalog, map[string]backend.API, error) {
	cat, err := catalog.New(cfg.Pages)
	if err != nil {
		return nil, nil, errors.Wrap(err, "building page catalog")
	}

	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	apis := make(map[string]backend.API, len(cfg.Pages))
	for _, p := range cat.Pages() {
		client := backend.NewClient(p.BaseURL+p.PathPrefix, timeout, log.With(logger.FieldPage, p.ID))
		apis[p.ID] = backend.NewRateLimited(client, cfg.Backend.RequestsPerMinute)
	}
	return cat, apis, nil
}

// openHistory opens the history database.
func openHistory(cfg *config.Config) (*db.DB, *history.Store, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening history database %s", cfg.DBPath)
	}
	return database, history.NewStore(database), nil
}

// pageFor returns the page named by id, or the configured default page.
func pageFor(cfg *config.Config, cat *catalog.Catalog, id string) (*catalog.Page, error) {
	if id == "" {
		id = cfg.DefaultPage
	}
	return cat.Page(id)
}

// findUnit accepts either a circle label or a display name.
func findUnit(p *catalog.Page, ref string) (catalog.Unit, error) {
	if u, ok := p.Unit(ref); ok {
		return u, nil
	}
	if u, ok := p.UnitByName(ref); ok {
		return u, nil
	}
	return catalog.Unit{}, errors.WithHintf(
		errors.Wrapf(controller.ErrUnknownControl, "%q on page %s", ref, p.ID),
		"Run `circles info --page %s --list` to see its units", p.ID,
	)
}

// textView collects region contents for commands that print them instead
// of drawing a page.
type textView struct {
	mu      sync.Mutex
	regions map[controller.Region]string
}

func newTextView() *textView {
	return &textView{regions: make(map[controller.Region]string)}
}

func (v *textView) SetRegion(region controller.Region, html string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regions[region] = html
}

func (v *textView) SetTooltip(string, bool) {}

func (v *textView) ClearInputs() {}

// Text returns the plain text of a region.
func (v *textView) Text(region controller.Region) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return strings.TrimSpace(htmlText(v.regions[region]))
}
