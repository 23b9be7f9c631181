package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMappingConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := loadMappingConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Version)
		assert.Contains(t, cfg.Fields, "vin")
		assert.Contains(t, cfg.Fields["make"], "Manufacturer")
	})

	t.Run("reads yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
version: 2
fields:
  vin: ["Chassis Number"]
  make: ["Brand"]
`), 0o644))

		cfg, err := loadMappingConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Version)
		assert.Equal(t, []string{"Chassis Number"}, cfg.Fields["vin"])
	})

	t.Run("rejects empty mapping", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

		_, err := loadMappingConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

		_, err := loadMappingConfig(path)
		assert.Error(t, err)
	})
}
