package page

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
)

// pageSummary is one entry of the page list.
type pageSummary struct {
	ID    string          `json:"id"`
	Kind  config.PageKind `json:"kind"`
	Title string          `json:"title"`
	URL   string          `json:"url"`
	Units int             `json:"units"`
}

// pageDetail describes a page and its circles.
type pageDetail struct {
	ID              string             `json:"id"`
	Kind            config.PageKind    `json:"kind"`
	Title           string             `json:"title"`
	Detail          config.DetailField `json:"detail"`
	ValidateNumeric bool               `json:"validate_numeric"`
	NavigateTo      string             `json:"navigate_to,omitempty"`
	Units           []catalog.Unit     `json:"units"`
}

func (h *Handler) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages := h.catalog.Pages()
	out := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageSummary{
			ID:    p.ID,
			Kind:  p.Kind,
			Title: p.Title,
			URL:   "/pages/" + p.ID,
			Units: len(p.Units()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Page(chi.URLParam(r, "page"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, pageDetail{
		ID:              p.ID,
		Kind:            p.Kind,
		Title:           p.Title,
		Detail:          p.Detail,
		ValidateNumeric: p.ValidateNumeric,
		NavigateTo:      p.NavigateTo,
		Units:           p.Units(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
