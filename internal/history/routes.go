package history

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
)

const maxLimit = 500

// RegisterRoutes mounts history endpoints under /api/history on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/history", func(r chi.Router) {
		r.Get("/", handleQuery(store))
		r.Get("/{id}", handleGetByID(store))
	})
}

func handleQuery(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := Filter{
			Page:      q.Get("page"),
			SessionID: q.Get("session"),
			Kind:      Kind(q.Get("kind")),
			Outcome:   Outcome(q.Get("outcome")),
			Limit:     100,
		}

		if v := q.Get("since"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "invalid since: expected RFC3339", http.StatusBadRequest)
				return
			}
			filter.Since = &t
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = min(n, maxLimit)
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			filter.Offset = n
		}

		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		entry, err := store.GetByID(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
