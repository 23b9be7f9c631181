package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"fleet-inspection-api/internal/models"
)

const inspectorColumns = "id, name, employee_id, created_at, updated_at"

func scanInspector(row interface{ Scan(...any) error }, p *models.Inspector) error {
	return row.Scan(&p.ID, &p.Name, &p.EmployeeID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *Server) createInspector(w http.ResponseWriter, r *http.Request) {
	var in models.CreateInspectorRequest
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
		`SELECT EXISTS (SELECT 1 FROM inspectors WHERE employee_id = $1)`, in.EmployeeID).Scan(&exists)
	if err != nil {
		s.serverError(w, "createInspector", err)
		return
	}
	if exists {
		http.Error(w, fmt.Sprintf("inspector with employee_id %q already exists", in.EmployeeID), http.StatusConflict)
		return
	}

	var out models.Inspector
	err = scanInspector(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO inspectors (name, employee_id)
		VALUES ($1, $2)
		RETURNING `+inspectorColumns, in.Name, in.EmployeeID), &out)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, fmt.Sprintf("inspector with employee_id %q already exists", in.EmployeeID), http.StatusConflict)
			return
		}
		s.serverError(w, "createInspector", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getInspectors(w http.ResponseWriter, r *http.Request) {
	sqlStr := `SELECT ` + inspectorColumns + ` FROM inspectors`
	args := []any{}
	if q := searchParam(r); q != "" {
		sqlStr += ` WHERE name ILIKE $1 OR employee_id ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	sqlStr += ` ORDER BY name ASC`

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		s.serverError(w, "getInspectors", err)
		return
	}
	defer rows.Close()

	inspectors := []models.Inspector{}
	for rows.Next() {
		var p models.Inspector
		if err := scanInspector(rows, &p); err != nil {
			s.serverError(w, "getInspectors", err)
			return
		}
		inspectors = append(inspectors, p)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "getInspectors", err)
		return
	}
	writeJSON(w, http.StatusOK, inspectors)
}

func (s *Server) getInspectorByID(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var p models.Inspector
	err := scanInspector(s.DB.QueryRowContext(r.Context(),
		`SELECT `+inspectorColumns+` FROM inspectors WHERE id = $1`, id), &p)
	if err == sql.ErrNoRows {
		http.Error(w, fmt.Sprintf("inspector with id %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "getInspectorByID", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateInspector(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var in models.UpdateInspectorRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var curEmployeeID string
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT employee_id FROM inspectors WHERE id = $1`, id).Scan(&curEmployeeID)
	if err == sql.ErrNoRows {
		http.Error(w, fmt.Sprintf("inspector with id %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "updateInspector", err)
		return
	}

	if in.EmployeeID != nil && *in.EmployeeID != curEmployeeID {
		var taken bool
		err := s.DB.QueryRowContext(r.Context(),
			`SELECT EXISTS (SELECT 1 FROM inspectors WHERE employee_id = $1 AND id <> $2)`,
			*in.EmployeeID, id).Scan(&taken)
		if err != nil {
			s.serverError(w, "updateInspector", err)
			return
		}
		if taken {
			http.Error(w, fmt.Sprintf("inspector with employee_id %q already exists", *in.EmployeeID), http.StatusConflict)
			return
		}
	}

	sqlStr := "UPDATE inspectors SET updated_at = now()"
	args := []any{}
	if in.Name != nil {
		args = append(args, *in.Name)
		sqlStr += fmt.Sprintf(", name = $%d", len(args))
	}
	if in.EmployeeID != nil {
		args = append(args, *in.EmployeeID)
		sqlStr += fmt.Sprintf(", employee_id = $%d", len(args))
	}
	args = append(args, id)
	sqlStr += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), inspectorColumns)

	var out models.Inspector
	if err := scanInspector(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, fmt.Sprintf("inspector with id %d not found", id), http.StatusNotFound)
			return
		}
		if isUniqueViolation(err) {
			http.Error(w, fmt.Sprintf("inspector with employee_id %q already exists", *in.EmployeeID), http.StatusConflict)
			return
		}
		s.serverError(w, "updateInspector", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteInspector(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var exists bool
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM inspectors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		s.serverError(w, "deleteInspector", err)
		return
	}
	if !exists {
		http.Error(w, fmt.Sprintf("inspector with id %d not found", id), http.StatusNotFound)
		return
	}

	// Inspections do not cascade from inspectors; the delete is refused
	// while any still reference this inspector.
	var refs int
	err = s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM inspections WHERE inspector_id = $1`, id).Scan(&refs)
	if err != nil {
		s.serverError(w, "deleteInspector", err)
		return
	}
	if refs > 0 {
		http.Error(w, fmt.Sprintf("cannot delete inspector %d: %d inspections still reference it", id, refs), http.StatusConflict)
		return
	}

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM inspectors WHERE id = $1`, id)
	if err != nil {
		s.serverError(w, "deleteInspector", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, fmt.Sprintf("inspector with id %d not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
