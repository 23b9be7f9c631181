package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"fleet-inspection-api/internal/models"
)

const vehicleColumns = "id, make, model, year, vin, license_plate, created_at, updated_at"

func scanVehicle(row interface{ Scan(...any) error }, v *models.Vehicle) error {
	return row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.VIN, &v.LicensePlate, &v.CreatedAt, &v.UpdatedAt)
}

func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	var in models.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// One combined lookup; VIN collision wins when both fields collide.
	var vin, plate string
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT vin, license_plate FROM vehicles
		WHERE vin = $1 OR license_plate = $2
		ORDER BY (vin = $1) DESC
		LIMIT 1`, in.VIN, in.LicensePlate).Scan(&vin, &plate)
	switch {
	case err == nil:
		if vin == in.VIN {
			http.Error(w, fmt.Sprintf("vehicle with VIN %q already exists", in.VIN), http.StatusConflict)
		} else {
			http.Error(w, fmt.Sprintf("vehicle with license plate %q already exists", in.LicensePlate), http.StatusConflict)
		}
		return
	case err != sql.ErrNoRows:
		s.serverError(w, "createVehicle", err)
		return
	}

	var out models.Vehicle
	err = scanVehicle(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO vehicles (make, model, year, vin, license_plate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+vehicleColumns,
		in.Make, in.Model, in.Year, in.VIN, in.LicensePlate), &out)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race between pre-check and insert; same conflict shape.
			http.Error(w, s.vehicleConflictMessage(err, in.VIN, in.LicensePlate), http.StatusConflict)
			return
		}
		s.serverError(w, "createVehicle", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getVehicles(w http.ResponseWriter, r *http.Request) {
	sqlStr := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []any{}
	if q := searchParam(r); q != "" {
		sqlStr += ` WHERE make ILIKE $1 OR model ILIKE $1 OR vin ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	sqlStr += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		s.serverError(w, "getVehicles", err)
		return
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			s.serverError(w, "getVehicles", err)
			return
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "getVehicles", err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) getVehicleByID(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var v models.Vehicle
	err := scanVehicle(s.DB.QueryRowContext(r.Context(),
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id), &v)
	if err == sql.ErrNoRows {
		http.Error(w, fmt.Sprintf("vehicle with id %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "getVehicleByID", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var in models.UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var curVIN, curPlate string
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT vin, license_plate FROM vehicles WHERE id = $1`, id).Scan(&curVIN, &curPlate)
	if err == sql.ErrNoRows {
		http.Error(w, fmt.Sprintf("vehicle with id %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "updateVehicle", err)
		return
	}

	// Changing VIN or plate must not collide with a different row; keeping
	// the current value is fine.
	if in.VIN != nil && *in.VIN != curVIN {
		if taken, err := s.vehicleFieldTaken(r, "vin", *in.VIN, id); err != nil {
			s.serverError(w, "updateVehicle", err)
			return
		} else if taken {
			http.Error(w, fmt.Sprintf("vehicle with VIN %q already exists", *in.VIN), http.StatusConflict)
			return
		}
	}
	if in.LicensePlate != nil && *in.LicensePlate != curPlate {
		if taken, err := s.vehicleFieldTaken(r, "license_plate", *in.LicensePlate, id); err != nil {
			s.serverError(w, "updateVehicle", err)
			return
		} else if taken {
			http.Error(w, fmt.Sprintf("vehicle with license plate %q already exists", *in.LicensePlate), http.StatusConflict)
			return
		}
	}

	type set struct {
		col string
		val any
	}
	sets := make([]set, 0, 5)
	if in.Make != nil {
		sets = append(sets, set{"make", *in.Make})
	}
	if in.Model != nil {
		sets = append(sets, set{"model", *in.Model})
	}
	if in.Year != nil {
		sets = append(sets, set{"year", *in.Year})
	}
	if in.VIN != nil {
		sets = append(sets, set{"vin", *in.VIN})
	}
	if in.LicensePlate != nil {
		sets = append(sets, set{"license_plate", *in.LicensePlate})
	}

	sqlStr := "UPDATE vehicles SET updated_at = now()"
	args := make([]any, 0, len(sets)+1)
	for _, st := range sets {
		args = append(args, st.val)
		sqlStr += fmt.Sprintf(", %s = $%d", st.col, len(args))
	}
	args = append(args, id)
	sqlStr += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args), vehicleColumns)

	var out models.Vehicle
	if err := scanVehicle(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, fmt.Sprintf("vehicle with id %d not found", id), http.StatusNotFound)
			return
		}
		if isUniqueViolation(err) {
			vin, plate := curVIN, curPlate
			if in.VIN != nil {
				vin = *in.VIN
			}
			if in.LicensePlate != nil {
				plate = *in.LicensePlate
			}
			http.Error(w, s.vehicleConflictMessage(err, vin, plate), http.StatusConflict)
			return
		}
		s.serverError(w, "updateVehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	// Inspections and their items go with the vehicle via ON DELETE CASCADE.
	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		s.serverError(w, "deleteVehicle", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, fmt.Sprintf("vehicle with id %d not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) vehicleFieldTaken(r *http.Request, col, val string, excludeID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(r.Context(),
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM vehicles WHERE %s = $1 AND id <> $2)`, col),
		val, excludeID).Scan(&exists)
	return exists, err
}

// vehicleConflictMessage picks the field to report from the violated
// constraint name, defaulting to the VIN.
func (s *Server) vehicleConflictMessage(err error, vin, plate string) string {
	if constraintName(err) == "vehicles_license_plate_key" {
		return fmt.Sprintf("vehicle with license plate %q already exists", plate)
	}
	return fmt.Sprintf("vehicle with VIN %q already exists", vin)
}
