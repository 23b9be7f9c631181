package internal

import (
	"net/http"

	"fleet-inspection-api/internal/models"
)

// getInspectionReport aggregates overall completion counts and the ten most
// recently created inspections, enriched for the dashboard's recent-activity
// panel.
func (s *Server) getInspectionReport(w http.ResponseWriter, r *http.Request) {
	var report models.InspectionReport
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM inspections`).Scan(&report.Total, &report.Completed)
	if err != nil {
		s.serverError(w, "getInspectionReport", err)
		return
	}
	report.Pending = report.Total - report.Completed

	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+inspectionColumns+` FROM inspections ORDER BY created_at DESC, id DESC LIMIT 10`)
	if err != nil {
		s.serverError(w, "getInspectionReport", err)
		return
	}
	defer rows.Close()

	recent := []models.Inspection{}
	for rows.Next() {
		var n models.Inspection
		if err := scanInspection(rows, &n); err != nil {
			s.serverError(w, "getInspectionReport", err)
			return
		}
		recent = append(recent, n)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "getInspectionReport", err)
		return
	}

	report.Recent, err = s.enrichInspections(r.Context(), recent)
	if err != nil {
		s.serverError(w, "getInspectionReport", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
