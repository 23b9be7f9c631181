//go:build integration

package tests

import (
	"testing"
	"time"

	"fleet-inspection-api/internal/models"
	"fleet-inspection-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleLifecycle(t *testing.T) {
	testutil.RequireIntegration(t)
	testutil.ResetSchema(t, testDB)

	created := mustCreateVehicle(t, "1HGBH41JXMN109186", "ABC123")
	assert.Equal(t, "Toyota", created.Make)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("retrievable by id", func(t *testing.T) {
		var got models.Vehicle
		w := do(t, "GET", "/vehicles/1", nil, &got)
		require.Equal(t, 200, w.Code)
		assert.Equal(t, created.VIN, got.VIN)
	})

	t.Run("duplicate VIN rejected", func(t *testing.T) {
		w := do(t, "POST", "/vehicles", models.CreateVehicleRequest{
			Make: "Honda", Model: "Civic", Year: 2022,
			VIN: "1HGBH41JXMN109186", LicensePlate: "XYZ789",
		}, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "VIN")
		assert.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("duplicate plate rejected", func(t *testing.T) {
		w := do(t, "POST", "/vehicles", models.CreateVehicleRequest{
			Make: "Honda", Model: "Civic", Year: 2022,
			VIN: "2HGBH41JXMN109187", LicensePlate: "ABC123",
		}, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "license plate")
	})

	t.Run("VIN collision wins when both collide", func(t *testing.T) {
		w := do(t, "POST", "/vehicles", models.CreateVehicleRequest{
			Make: "Honda", Model: "Civic", Year: 2022,
			VIN: "1HGBH41JXMN109186", LicensePlate: "ABC123",
		}, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "VIN")
	})

	t.Run("sparse patch leaves omitted fields alone", func(t *testing.T) {
		time.Sleep(20 * time.Millisecond)
		newModel := "Corolla"
		var updated models.Vehicle
		w := do(t, "PATCH", "/vehicles/1", models.UpdateVehicleRequest{Model: &newModel}, &updated)
		require.Equal(t, 200, w.Code)
		assert.Equal(t, "Corolla", updated.Model)
		assert.Equal(t, created.Make, updated.Make)
		assert.Equal(t, created.Year, updated.Year)
		assert.Equal(t, created.VIN, updated.VIN)
		assert.Equal(t, created.CreatedAt.UTC(), updated.CreatedAt.UTC())
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at must increase")
	})

	t.Run("self-collision on unchanged VIN allowed", func(t *testing.T) {
		vin := created.VIN
		w := do(t, "PATCH", "/vehicles/1", models.UpdateVehicleRequest{VIN: &vin}, nil)
		assert.Equal(t, 200, w.Code)
	})

	t.Run("update to taken plate rejected", func(t *testing.T) {
		mustCreateVehicle(t, "3HGBH41JXMN109188", "TAKEN1")
		plate := "TAKEN1"
		w := do(t, "PATCH", "/vehicles/1", models.UpdateVehicleRequest{LicensePlate: &plate}, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "TAKEN1")
	})

	t.Run("update unknown id is not found", func(t *testing.T) {
		m := "Ghost"
		w := do(t, "PATCH", "/vehicles/9999", models.UpdateVehicleRequest{Make: &m}, nil)
		assert.Equal(t, 404, w.Code)
		assert.Contains(t, w.Body.String(), "not found")
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		w := do(t, "PATCH", "/vehicles/1", models.UpdateVehicleRequest{}, nil)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("list is newest first", func(t *testing.T) {
		var vehicles []models.Vehicle
		w := do(t, "GET", "/vehicles", nil, &vehicles)
		require.Equal(t, 200, w.Code)
		require.Len(t, vehicles, 2)
		assert.Equal(t, "TAKEN1", vehicles[0].LicensePlate)
	})

	t.Run("get unknown and non-positive ids are not found", func(t *testing.T) {
		for _, path := range []string{"/vehicles/9999", "/vehicles/0", "/vehicles/-3", "/vehicles/abc"} {
			w := do(t, "GET", path, nil, nil)
			assert.Equal(t, 404, w.Code, "path %s", path)
		}
	})
}

func TestVehicleCascadeDelete(t *testing.T) {
	testutil.RequireIntegration(t)
	testutil.ResetSchema(t, testDB)

	v1 := mustCreateVehicle(t, "1HGBH41JXMN109186", "ABC123")
	v2 := mustCreateVehicle(t, "2HGBH41JXMN109187", "DEF456")
	p := mustCreateInspector(t, "John Smith", "EMP001")
	n := mustCreateInspection(t, v1.ID, p.ID, "2024-01-15")
	mustCreateInspection(t, v2.ID, p.ID, "2024-02-20")

	var items []models.InspectionItem
	w := do(t, "POST", "/inspections/1/items", models.CreateInspectionItemsRequest{
		Items: []models.NewInspectionItem{
			{ItemName: "Brakes", Status: models.StatusPass},
			{ItemName: "Lights", Status: models.StatusFail},
		},
	}, &items)
	require.Equal(t, 201, w.Code)
	require.Len(t, items, 2)

	var ack map[string]bool
	w = do(t, "DELETE", "/vehicles/1", nil, &ack)
	require.Equal(t, 200, w.Code)
	assert.True(t, ack["success"])

	// Vehicle, its inspection and that inspection's items are gone.
	assert.Equal(t, 404, do(t, "GET", "/vehicles/1", nil, nil).Code)
	var count int
	require.NoError(t, testDB.QueryRow(
		"SELECT COUNT(*) FROM inspections WHERE vehicle_id = $1", v1.ID).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, testDB.QueryRow(
		"SELECT COUNT(*) FROM inspection_items WHERE inspection_id = $1", n.ID).Scan(&count))
	assert.Zero(t, count)

	// The inspector and the other vehicle are untouched.
	assert.Equal(t, 200, do(t, "GET", "/inspectors/1", nil, nil).Code)
	assert.Equal(t, 200, do(t, "GET", "/vehicles/2", nil, nil).Code)

	t.Run("deleting again is not found", func(t *testing.T) {
		assert.Equal(t, 404, do(t, "DELETE", "/vehicles/1", nil, nil).Code)
	})
}

func TestInspectorHandlers(t *testing.T) {
	testutil.RequireIntegration(t)
	testutil.ResetSchema(t, testDB)

	smith := mustCreateInspector(t, "Zoe Smith", "EMP001")
	mustCreateInspector(t, "Adam Jones", "EMP002")

	t.Run("duplicate employee_id rejected", func(t *testing.T) {
		w := do(t, "POST", "/inspectors", models.CreateInspectorRequest{
			Name: "Impostor", EmployeeID: "EMP001",
		}, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "EMP001")
	})

	t.Run("list is alphabetical", func(t *testing.T) {
		var inspectors []models.Inspector
		w := do(t, "GET", "/inspectors", nil, &inspectors)
		require.Equal(t, 200, w.Code)
		require.Len(t, inspectors, 2)
		assert.Equal(t, "Adam Jones", inspectors[0].Name)
		assert.Equal(t, "Zoe Smith", inspectors[1].Name)
	})

	t.Run("update to taken employee_id rejected", func(t *testing.T) {
		emp := "EMP002"
		w := do(t, "PATCH", "/inspectors/1", models.UpdateInspectorRequest{EmployeeID: &emp}, nil)
		assert.Equal(t, 409, w.Code)
	})

	t.Run("keeping own employee_id allowed", func(t *testing.T) {
		emp := "EMP001"
		name := "Zoe Smith-Jones"
		var updated models.Inspector
		w := do(t, "PATCH", "/inspectors/1", models.UpdateInspectorRequest{Name: &name, EmployeeID: &emp}, &updated)
		require.Equal(t, 200, w.Code)
		assert.Equal(t, "Zoe Smith-Jones", updated.Name)
	})

	t.Run("delete guarded by referencing inspections", func(t *testing.T) {
		v := mustCreateVehicle(t, "1HGBH41JXMN109186", "ABC123")
		mustCreateInspection(t, v.ID, smith.ID, "2024-01-15")
		mustCreateInspection(t, v.ID, smith.ID, "2024-01-16")
		mustCreateInspection(t, v.ID, smith.ID, "2024-01-17")

		w := do(t, "DELETE", "/inspectors/1", nil, nil)
		assert.Equal(t, 409, w.Code)
		assert.Contains(t, w.Body.String(), "3 inspections")
	})

	t.Run("delete with zero references succeeds", func(t *testing.T) {
		var ack map[string]bool
		w := do(t, "DELETE", "/inspectors/2", nil, &ack)
		require.Equal(t, 200, w.Code)
		assert.True(t, ack["success"])
	})

	t.Run("delete unknown id is not found", func(t *testing.T) {
		w := do(t, "DELETE", "/inspectors/999", nil, nil)
		assert.Equal(t, 404, w.Code)
	})
}
