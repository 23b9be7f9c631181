package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// successResponse is the acknowledgment body for delete operations.
type successResponse struct {
	Success bool `json:"success"`
}

// serverError logs an unexpected storage failure and surfaces a 500. Expected
// failures (not found, conflicts) never go through here.
func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.Logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The handlers pre-check uniqueness to produce descriptive
// messages; the constraint itself is the backstop when two writers race
// past the pre-check, and its violation maps to the same conflict status.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// constraintName extracts the violated constraint, empty if err is not a
// Postgres error.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
