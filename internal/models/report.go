package models

// InspectionReport is the aggregate view for the dashboard: overall counts
// plus the ten most recently created inspections, fully enriched.
type InspectionReport struct {
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	Pending   int                 `json:"pending"`
	Recent    []InspectionDetails `json:"recent"`
}
