// Package page serves the conversion pages: the HTML markup, the websocket
// that drives one Controller per open page, and a small JSON catalog API.
package page

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/controller"
	"github.com/sp-meter/circles/internal/logger"
)

// Options configures optional collaborators of a Handler.
type Options struct {
	Logger      *zap.SugaredLogger
	Recorder    controller.Recorder
	DefaultPage string
}

// Handler serves every page of a catalog.
type Handler struct {
	catalog     *catalog.Catalog
	apis        map[string]backend.API
	recorder    controller.Recorder
	log         *zap.SugaredLogger
	defaultPage string
}

// New creates a Handler. apis maps a page id to the backend it talks to.
func New(cat *catalog.Catalog, apis map[string]backend.API, opts Options) *Handler {
	def := opts.DefaultPage
	if def == "" {
		if pages := cat.Pages(); len(pages) > 0 {
			def = pages[0].ID
		}
	}
	return &Handler{
		catalog:     cat,
		apis:        apis,
		recorder:    opts.Recorder,
		log:         logger.OrNop(opts.Logger),
		defaultPage: def,
	}
}

// RegisterRoutes mounts all page routes onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/pages/{page}", h.ServePage)
	r.Get("/ws/{page}", h.handleWebSocket)
	r.Get("/api/pages", h.handleListPages)
	r.Get("/api/pages/{page}", h.handleGetPage)
}
