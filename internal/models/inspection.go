package models

import (
	"errors"
	"fmt"
	"time"
)

type Inspection struct {
	ID             int64     `json:"id"`
	VehicleID      int64     `json:"vehicle_id"`
	InspectorID    int64     `json:"inspector_id"`
	InspectionDate time.Time `json:"inspection_date"`
	Completed      bool      `json:"completed"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InspectionDetails is an inspection enriched with its vehicle, inspector
// and checklist items for the detail and report views.
type InspectionDetails struct {
	Inspection
	Vehicle   Vehicle          `json:"vehicle"`
	Inspector Inspector        `json:"inspector"`
	Items     []InspectionItem `json:"items"`
}

type CreateInspectionRequest struct {
	VehicleID      int64   `json:"vehicle_id"`
	InspectorID    int64   `json:"inspector_id"`
	InspectionDate string  `json:"inspection_date"`
	Notes          *string `json:"notes"`
	// Completed is accepted but ignored: new inspections always start open.
	Completed *bool `json:"completed"`
}

func (r *CreateInspectionRequest) Validate() error {
	if r.VehicleID <= 0 {
		return errors.New("vehicle_id is required")
	}
	if r.InspectorID <= 0 {
		return errors.New("inspector_id is required")
	}
	if _, err := r.Date(); err != nil {
		return err
	}
	return nil
}

// Date parses the inspection_date field, accepting either a bare date or a
// full RFC 3339 timestamp.
func (r *CreateInspectionRequest) Date() (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, r.InspectionDate); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, r.InspectionDate); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("inspection_date %q is not a valid date", r.InspectionDate)
}

// UpdateInspectionRequest is a sparse patch. Notes is nullable, so it uses
// Optional to tell "absent" apart from an explicit null.
type UpdateInspectionRequest struct {
	Completed *bool            `json:"completed"`
	Notes     Optional[string] `json:"notes"`
}

func (r *UpdateInspectionRequest) Validate() error {
	if r.Completed == nil && !r.Notes.Set {
		return errors.New("no fields to update")
	}
	return nil
}
