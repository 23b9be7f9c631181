package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	MappingPath string // default "configs/mapping/vehicles.yaml"
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig maps spreadsheet column headers to vehicle fields. Each
// field lists the headers (case-insensitive) it accepts.
type MappingConfig struct {
	Version int                 `yaml:"version"`
	Fields  map[string][]string `yaml:"fields"`
}

var vehicleFields = []string{"make", "model", "year", "vin", "license_plate"}

// ImportExcel processes an Excel file and upserts vehicles keyed by VIN.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	// Set defaults
	if opts.MappingPath == "" {
		opts.MappingPath = "configs/mapping/vehicles.yaml"
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := loadMappingConfig(opts.MappingPath)
	if err != nil {
		return summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx.OpenBinary requires the whole file up front
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}

	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Release()

	for _, sheet := range xlFile.Sheets {
		sheetSummary := processSheet(ctx, conn, sheet, mapping, opts)
		summary.Sheets = append(summary.Sheets, sheetSummary)

		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}

	return summary, nil
}

func loadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultMapping(), nil
		}
		return nil, err
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("mapping %s defines no fields", path)
	}
	return &cfg, nil
}

func defaultMapping() *MappingConfig {
	return &MappingConfig{
		Version: 1,
		Fields: map[string][]string{
			"make":          {"Make", "Manufacturer"},
			"model":         {"Model"},
			"year":          {"Year", "Model Year"},
			"vin":           {"VIN", "Vehicle Identification Number"},
			"license_plate": {"License Plate", "Plate", "Registration"},
		},
	}
}

func processSheet(ctx context.Context, conn *pgxpool.Conn, sheet *xlsx.Sheet, mapping *MappingConfig, opts ImportOptions) SheetSummary {
	summary := SheetSummary{Name: sheet.Name}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{
			Sheet:   sheet.Name,
			Row:     1,
			Message: "Failed to read header row: " + err.Error(),
		})
		return summary
	}

	// Map column index -> vehicle field via the header aliases.
	fieldByCol := map[int]string{}
	for colIdx := 0; ; colIdx++ {
		cell := headerRow.GetCell(colIdx)
		if cell == nil {
			break
		}
		headerName := strings.TrimSpace(cell.String())
		if headerName == "" {
			continue
		}
		for field, aliases := range mapping.Fields {
			for _, alias := range aliases {
				if strings.EqualFold(alias, headerName) {
					fieldByCol[colIdx] = field
				}
			}
		}
	}
	if len(fieldByCol) == 0 {
		// Nothing recognizable; probably not a vehicle sheet.
		return summary
	}

	for rowIdx := 1; ; rowIdx++ {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}

		rowData := map[string]string{}
		empty := true
		for colIdx, field := range fieldByCol {
			cell := row.GetCell(colIdx)
			if cell == nil {
				continue
			}
			if v := strings.TrimSpace(cell.String()); v != "" {
				rowData[field] = v
				empty = false
			}
		}
		if empty {
			summary.Skipped++
			continue
		}

		rowErr := upsertVehicle(ctx, conn, rowData, opts.DryRun, &summary)
		if rowErr != "" {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: rowErr,
				})
			}
		}
	}

	return summary
}

// upsertVehicle validates one row and inserts or updates by VIN. Returns a
// row-level error message, empty on success.
func upsertVehicle(ctx context.Context, conn *pgxpool.Conn, rowData map[string]string, dryRun bool, summary *SheetSummary) string {
	for _, field := range vehicleFields {
		if rowData[field] == "" {
			return fmt.Sprintf("missing required field %s", field)
		}
	}
	vin := rowData["vin"]
	if len(vin) != 17 {
		return fmt.Sprintf("vin %q must be exactly 17 characters", vin)
	}
	year, err := strconv.Atoi(rowData["year"])
	if err != nil {
		return fmt.Sprintf("year %q is not a number", rowData["year"])
	}

	var existingID int64
	err = conn.QueryRow(ctx, `SELECT id FROM vehicles WHERE vin = $1`, vin).Scan(&existingID)
	if err != nil && err != pgx.ErrNoRows {
		return err.Error()
	}

	if existingID > 0 {
		if !dryRun {
			_, err = conn.Exec(ctx, `
				UPDATE vehicles
				SET make = $1, model = $2, year = $3, license_plate = $4, updated_at = now()
				WHERE id = $5`,
				rowData["make"], rowData["model"], year, rowData["license_plate"], existingID)
			if err != nil {
				return err.Error()
			}
		}
		summary.Updated++
		return ""
	}

	if !dryRun {
		_, err = conn.Exec(ctx, `
			INSERT INTO vehicles (make, model, year, vin, license_plate)
			VALUES ($1, $2, $3, $4, $5)`,
			rowData["make"], rowData["model"], year, vin, rowData["license_plate"])
		if err != nil {
			return err.Error()
		}
	}
	summary.Inserted++
	return ""
}
