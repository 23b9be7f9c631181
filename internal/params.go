package internal

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// idParam parses the {id} route parameter. Returns 0 for anything that is
// not a positive integer; lookups treat 0 as "cannot exist".
func idParam(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// searchParam returns the trimmed q query parameter for list filtering.
func searchParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("q"))
}
