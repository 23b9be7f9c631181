package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"fleet-inspection-api/internal/models"
)

const itemColumns = "id, inspection_id, item_name, status, comments, created_at, updated_at"

func scanItem(row interface{ Scan(...any) error }, it *models.InspectionItem) error {
	return row.Scan(&it.ID, &it.InspectionID, &it.ItemName, &it.Status, &it.Comments, &it.CreatedAt, &it.UpdatedAt)
}

func (s *Server) createInspectionItems(w http.ResponseWriter, r *http.Request) {
	inspectionID := idParam(r)
	var in models.CreateInspectionItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var exists bool
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM inspections WHERE id = $1)`, inspectionID).Scan(&exists)
	if err != nil {
		s.serverError(w, "createInspectionItems", err)
		return
	}
	if !exists {
		http.Error(w, fmt.Sprintf("inspection with id %d not found", inspectionID), http.StatusNotFound)
		return
	}

	created := []models.InspectionItem{}
	if len(in.Items) == 0 {
		// Empty checklist is a no-op, not an error.
		writeJSON(w, http.StatusCreated, created)
		return
	}

	// Single multi-row INSERT so the batch is all-or-nothing.
	sqlStr := `INSERT INTO inspection_items (inspection_id, item_name, status, comments) VALUES `
	args := make([]any, 0, len(in.Items)*4)
	for i, it := range in.Items {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("($%d, $%d, $%d, $%d)", len(args)+1, len(args)+2, len(args)+3, len(args)+4)
		args = append(args, inspectionID, it.ItemName, it.Status, it.Comments)
	}
	sqlStr += " RETURNING " + itemColumns

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		s.serverError(w, "createInspectionItems", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var it models.InspectionItem
		if err := scanItem(rows, &it); err != nil {
			s.serverError(w, "createInspectionItems", err)
			return
		}
		created = append(created, it)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "createInspectionItems", err)
		return
	}
	s.Metrics.InspectionItemsCreated(len(created))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateInspectionItem(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var in models.UpdateInspectionItemRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sqlStr := "UPDATE inspection_items SET updated_at = now()"
	args := []any{}
	if in.Status != nil {
		args = append(args, *in.Status)
		sqlStr += fmt.Sprintf(", status = $%d", len(args))
	}
	if in.Comments.Set {
		args = append(args, in.Comments.Ptr())
		sqlStr += fmt.Sprintf(", comments = $%d", len(args))
	}
	args = append(args, id)
	sqlStr += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), itemColumns)

	var out models.InspectionItem
	if err := scanItem(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, fmt.Sprintf("inspection item with id %d not found", id), http.StatusNotFound)
			return
		}
		s.serverError(w, "updateInspectionItem", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
