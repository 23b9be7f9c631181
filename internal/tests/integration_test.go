//go:build integration

package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"fleet-inspection-api/internal"
	"fleet-inspection-api/internal/config"
	"fleet-inspection-api/internal/models"
	"fleet-inspection-api/internal/testutil"

	"go.uber.org/zap"
)

var testServer *internal.Server
var testDB *sql.DB

func TestMain(m *testing.M) {
	// Skip if not running integration tests
	if os.Getenv("INTEGRATION") != "1" {
		os.Exit(0)
	}

	var err error
	testDB, err = testutil.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open test database: %v\n", err)
		os.Exit(1)
	}
	if err := testutil.Reset(testDB); err != nil {
		fmt.Fprintf(os.Stderr, "failed to reset test schema: %v\n", err)
		os.Exit(1)
	}

	cfg := &config.Config{
		HTTPAddr:    ":0",
		DatabaseDSN: testutil.DSN(),
		AppEnv:      "test",
	}
	testServer, err = internal.NewServer(cfg, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create test server: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testServer.Close(context.Background())
	testDB.Close()
	os.Exit(code)
}

// do performs a request against the test server and decodes the JSON
// response into out when out is non-nil and the decode succeeds.
func do(t *testing.T, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	testServer.Router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

func mustCreateVehicle(t *testing.T, vin, plate string) models.Vehicle {
	t.Helper()
	var v models.Vehicle
	w := do(t, "POST", "/vehicles", models.CreateVehicleRequest{
		Make: "Toyota", Model: "Camry", Year: 2023, VIN: vin, LicensePlate: plate,
	}, &v)
	if w.Code != 201 {
		t.Fatalf("create vehicle: status %d body %s", w.Code, w.Body.String())
	}
	return v
}

func mustCreateInspector(t *testing.T, name, employeeID string) models.Inspector {
	t.Helper()
	var p models.Inspector
	w := do(t, "POST", "/inspectors", models.CreateInspectorRequest{
		Name: name, EmployeeID: employeeID,
	}, &p)
	if w.Code != 201 {
		t.Fatalf("create inspector: status %d body %s", w.Code, w.Body.String())
	}
	return p
}

func mustCreateInspection(t *testing.T, vehicleID, inspectorID int64, date string) models.Inspection {
	t.Helper()
	var n models.Inspection
	w := do(t, "POST", "/inspections", models.CreateInspectionRequest{
		VehicleID: vehicleID, InspectorID: inspectorID, InspectionDate: date,
	}, &n)
	if w.Code != 201 {
		t.Fatalf("create inspection: status %d body %s", w.Code, w.Body.String())
	}
	return n
}

func TestHealthEndpoint(t *testing.T) {
	testutil.RequireIntegration(t)

	w := do(t, "GET", "/health", nil, nil)
	if w.Code != 200 {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", w.Body.String())
	}
}
