package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fleet-inspection-api/internal/models"
)

const inspectionColumns = "id, vehicle_id, inspector_id, inspection_date, completed, notes, created_at, updated_at"

func scanInspection(row interface{ Scan(...any) error }, n *models.Inspection) error {
	return row.Scan(&n.ID, &n.VehicleID, &n.InspectorID, &n.InspectionDate, &n.Completed, &n.Notes, &n.CreatedAt, &n.UpdatedAt)
}

func (s *Server) createInspection(w http.ResponseWriter, r *http.Request) {
	var in models.CreateInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Vehicle existence is checked before the inspector so that, with both
	// ids invalid, the vehicle error is the one reported.
	var exists bool
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, in.VehicleID).Scan(&exists); err != nil {
		s.serverError(w, "createInspection", err)
		return
	}
	if !exists {
		http.Error(w, fmt.Sprintf("vehicle with id %d not found", in.VehicleID), http.StatusNotFound)
		return
	}
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM inspectors WHERE id = $1)`, in.InspectorID).Scan(&exists); err != nil {
		s.serverError(w, "createInspection", err)
		return
	}
	if !exists {
		http.Error(w, fmt.Sprintf("inspector with id %d not found", in.InspectorID), http.StatusNotFound)
		return
	}

	date, _ := in.Date() // validated above

	// New inspections always start open, whatever the payload says.
	var out models.Inspection
	err := scanInspection(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO inspections (vehicle_id, inspector_id, inspection_date, completed, notes)
		VALUES ($1, $2, $3, false, $4)
		RETURNING `+inspectionColumns,
		in.VehicleID, in.InspectorID, date, in.Notes), &out)
	if err != nil {
		s.serverError(w, "createInspection", err)
		return
	}
	s.Metrics.InspectionCreated()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getInspections(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+inspectionColumns+` FROM inspections ORDER BY inspection_date DESC, id DESC`)
	if err != nil {
		s.serverError(w, "getInspections", err)
		return
	}
	defer rows.Close()

	inspections := []models.Inspection{}
	for rows.Next() {
		var n models.Inspection
		if err := scanInspection(rows, &n); err != nil {
			s.serverError(w, "getInspections", err)
			return
		}
		inspections = append(inspections, n)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "getInspections", err)
		return
	}
	writeJSON(w, http.StatusOK, inspections)
}

func (s *Server) updateInspection(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var in models.UpdateInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sqlStr := "UPDATE inspections SET updated_at = now()"
	args := []any{}
	if in.Completed != nil {
		args = append(args, *in.Completed)
		sqlStr += fmt.Sprintf(", completed = $%d", len(args))
	}
	if in.Notes.Set {
		args = append(args, in.Notes.Ptr()) // nil clears the column
		sqlStr += fmt.Sprintf(", notes = $%d", len(args))
	}
	args = append(args, id)
	sqlStr += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), inspectionColumns)

	var out models.Inspection
	if err := scanInspection(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, fmt.Sprintf("inspection with id %d not found", id), http.StatusNotFound)
			return
		}
		s.serverError(w, "updateInspection", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getInspectionDetails(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var n models.Inspection
	err := scanInspection(s.DB.QueryRowContext(r.Context(),
		`SELECT `+inspectionColumns+` FROM inspections WHERE id = $1`, id), &n)
	if err == sql.ErrNoRows {
		http.Error(w, fmt.Sprintf("inspection with id %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "getInspectionDetails", err)
		return
	}

	details, err := s.enrichInspections(r.Context(), []models.Inspection{n})
	if err != nil {
		s.serverError(w, "getInspectionDetails", err)
		return
	}
	writeJSON(w, http.StatusOK, details[0])
}

func (s *Server) getVehicleInspections(w http.ResponseWriter, r *http.Request) {
	vehicleID := idParam(r)
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+inspectionColumns+` FROM inspections WHERE vehicle_id = $1 ORDER BY inspection_date DESC, id DESC`,
		vehicleID)
	if err != nil {
		s.serverError(w, "getVehicleInspections", err)
		return
	}
	defer rows.Close()

	inspections := []models.Inspection{}
	for rows.Next() {
		var n models.Inspection
		if err := scanInspection(rows, &n); err != nil {
			s.serverError(w, "getVehicleInspections", err)
			return
		}
		inspections = append(inspections, n)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "getVehicleInspections", err)
		return
	}

	details, err := s.enrichInspections(r.Context(), inspections)
	if err != nil {
		s.serverError(w, "getVehicleInspections", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// enrichInspections attaches the vehicle, inspector and checklist items to
// each inspection: batch-fetch the related rows by id set, group into maps,
// then zip. Order of the input is preserved.
func (s *Server) enrichInspections(ctx context.Context, inspections []models.Inspection) ([]models.InspectionDetails, error) {
	details := make([]models.InspectionDetails, 0, len(inspections))
	if len(inspections) == 0 {
		return details, nil
	}

	vehicleIDs := map[int64]struct{}{}
	inspectorIDs := map[int64]struct{}{}
	inspectionIDs := make([]int64, 0, len(inspections))
	for _, n := range inspections {
		vehicleIDs[n.VehicleID] = struct{}{}
		inspectorIDs[n.InspectorID] = struct{}{}
		inspectionIDs = append(inspectionIDs, n.ID)
	}

	vehicles := map[int64]models.Vehicle{}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ANY ($1::bigint[])`, int64Array(vehicleIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		vehicles[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	inspectors := map[int64]models.Inspector{}
	rows, err = s.DB.QueryContext(ctx,
		`SELECT `+inspectorColumns+` FROM inspectors WHERE id = ANY ($1::bigint[])`, int64Array(inspectorIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p models.Inspector
		if err := scanInspector(rows, &p); err != nil {
			return nil, err
		}
		inspectors[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := map[int64][]models.InspectionItem{}
	rows, err = s.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inspection_items WHERE inspection_id = ANY ($1::bigint[]) ORDER BY id ASC`,
		pgInt64Slice(inspectionIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.InspectionItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		items[it.InspectionID] = append(items[it.InspectionID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, n := range inspections {
		d := models.InspectionDetails{
			Inspection: n,
			Vehicle:    vehicles[n.VehicleID],
			Inspector:  inspectors[n.InspectorID],
			Items:      items[n.ID],
		}
		if d.Items == nil {
			d.Items = []models.InspectionItem{}
		}
		details = append(details, d)
	}
	return details, nil
}

// int64Array renders an id set as a Postgres bigint array literal for ANY().
func int64Array(ids map[int64]struct{}) string {
	parts := make([]string, 0, len(ids))
	for id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func pgInt64Slice(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
