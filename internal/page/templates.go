package page

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/pages/"+h.defaultPage, http.StatusFound)
}

// ServePage renders the markup of one page.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Page(chi.URLParam(r, "page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.log.Errorw("rendering page", "page", p.ID, "error", err)
		http.Error(w, "rendering page failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
