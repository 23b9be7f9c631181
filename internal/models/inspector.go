package models

import (
	"errors"
	"strings"
	"time"
)

type Inspector struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	EmployeeID string    `json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateInspectorRequest struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

func (r *CreateInspectorRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.EmployeeID) == "" {
		return errors.New("employee_id is required")
	}
	return nil
}

// UpdateInspectorRequest is a sparse patch: nil fields are left untouched.
type UpdateInspectorRequest struct {
	Name       *string `json:"name"`
	EmployeeID *string `json:"employee_id"`
}

func (r *UpdateInspectorRequest) Validate() error {
	if r.Name == nil && r.EmployeeID == nil {
		return errors.New("no fields to update")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be blank")
	}
	if r.EmployeeID != nil && strings.TrimSpace(*r.EmployeeID) == "" {
		return errors.New("employee_id cannot be blank")
	}
	return nil
}
