package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Vehicle struct {
	ID           int64     `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	VIN          string    `json:"vin"`
	LicensePlate string    `json:"license_plate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateVehicleRequest is the payload for registering a vehicle.
type CreateVehicleRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	VIN          string `json:"vin"`
	LicensePlate string `json:"license_plate"`
}

func (r *CreateVehicleRequest) Validate() error {
	if strings.TrimSpace(r.Make) == "" {
		return errors.New("make is required")
	}
	if strings.TrimSpace(r.Model) == "" {
		return errors.New("model is required")
	}
	if err := validateYear(r.Year); err != nil {
		return err
	}
	if err := validateVIN(r.VIN); err != nil {
		return err
	}
	if strings.TrimSpace(r.LicensePlate) == "" {
		return errors.New("license_plate is required")
	}
	return nil
}

// UpdateVehicleRequest is a sparse patch: nil fields are left untouched.
// No vehicle column is nullable, so plain pointers suffice here.
type UpdateVehicleRequest struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	Year         *int    `json:"year"`
	VIN          *string `json:"vin"`
	LicensePlate *string `json:"license_plate"`
}

func (r *UpdateVehicleRequest) Validate() error {
	if r.Make == nil && r.Model == nil && r.Year == nil && r.VIN == nil && r.LicensePlate == nil {
		return errors.New("no fields to update")
	}
	if r.Make != nil && strings.TrimSpace(*r.Make) == "" {
		return errors.New("make cannot be blank")
	}
	if r.Model != nil && strings.TrimSpace(*r.Model) == "" {
		return errors.New("model cannot be blank")
	}
	if r.Year != nil {
		if err := validateYear(*r.Year); err != nil {
			return err
		}
	}
	if r.VIN != nil {
		if err := validateVIN(*r.VIN); err != nil {
			return err
		}
	}
	if r.LicensePlate != nil && strings.TrimSpace(*r.LicensePlate) == "" {
		return errors.New("license_plate cannot be blank")
	}
	return nil
}

func validateVIN(vin string) error {
	if len(vin) != 17 {
		return fmt.Errorf("vin must be exactly 17 characters, got %d", len(vin))
	}
	return nil
}

func validateYear(year int) error {
	if year < 1900 || year > time.Now().Year()+1 {
		return fmt.Errorf("year %d is out of range", year)
	}
	return nil
}
