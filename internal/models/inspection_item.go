package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Checklist item statuses.
const (
	StatusPass          = "pass"
	StatusFail          = "fail"
	StatusNotApplicable = "not_applicable"
)

type InspectionItem struct {
	ID           int64     `json:"id"`
	InspectionID int64     `json:"inspection_id"`
	ItemName     string    `json:"item_name"`
	Status       string    `json:"status"`
	Comments     *string   `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewInspectionItem is one checklist line within a bulk create.
type NewInspectionItem struct {
	ItemName string  `json:"item_name"`
	Status   string  `json:"status"`
	Comments *string `json:"comments"`
}

type CreateInspectionItemsRequest struct {
	Items []NewInspectionItem `json:"items"`
}

func (r *CreateInspectionItemsRequest) Validate() error {
	for i, it := range r.Items {
		if strings.TrimSpace(it.ItemName) == "" {
			return fmt.Errorf("items[%d]: item_name is required", i)
		}
		if !ValidStatus(it.Status) {
			return fmt.Errorf("items[%d]: status %q must be one of pass, fail, not_applicable", i, it.Status)
		}
	}
	return nil
}

// UpdateInspectionItemRequest is a sparse patch over status and comments.
type UpdateInspectionItemRequest struct {
	Status   *string          `json:"status"`
	Comments Optional[string] `json:"comments"`
}

func (r *UpdateInspectionItemRequest) Validate() error {
	if r.Status == nil && !r.Comments.Set {
		return errors.New("no fields to update")
	}
	if r.Status != nil && !ValidStatus(*r.Status) {
		return fmt.Errorf("status %q must be one of pass, fail, not_applicable", *r.Status)
	}
	return nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPass, StatusFail, StatusNotApplicable:
		return true
	}
	return false
}
