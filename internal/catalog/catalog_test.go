package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Prices(t *testing.T) {
	c := Default()

	price, err := c.Price("Engine Repair")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), price)

	_, err = c.Price("Teleport")
	assert.ErrorIs(t, err, apperr.ErrUnknownServiceType)

	prices := c.Prices()
	prices["Oil Change"] = 1
	again, _ := c.Price("Oil Change")
	assert.Equal(t, int64(500), again)
}

func TestAllowedServices(t *testing.T) {
	c := Default()

	services, err := c.AllowedServices(models.VehicleBike)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brake Check", "Chain Adjustment", "General Maintenance", "Oil Change"}, services)

	_, err = c.AllowedServices("Truck")
	assert.ErrorIs(t, err, apperr.ErrInvalidVehicleType)
}

func TestAllowedBrandsAndModels(t *testing.T) {
	c := Default()

	brands, err := c.AllowedBrands(models.VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, []string{"Toyota", "Honda", "Hyundai"}, brands)

	modelNames, err := c.AllowedModels(models.VehicleBike, "Hero")
	require.NoError(t, err)
	assert.Equal(t, []string{"Splendor", "HF Deluxe", "Glamour"}, modelNames)

	modelNames, err = c.AllowedModels(models.VehicleBike, "Toyota")
	require.NoError(t, err)
	assert.Empty(t, modelNames)
}

func TestValidate(t *testing.T) {
	c := Default()

	assert.NoError(t, c.Validate(models.VehicleCar, "Toyota", "Corolla"))
	assert.ErrorIs(t, c.Validate(models.VehicleCar, "Toyota", "Hatchback-X"), apperr.ErrInvalidCatalogCombination)
	assert.ErrorIs(t, c.Validate(models.VehicleBike, "Toyota", "Corolla"), apperr.ErrInvalidCatalogCombination)
	assert.ErrorIs(t, c.Validate("Boat", "Toyota", "Corolla"), apperr.ErrInvalidVehicleType)
}

func TestQuote(t *testing.T) {
	c := Default()

	lines, total, err := c.Quote(models.VehicleCar, []string{"Oil Change", "AC Service"})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)
	require.Len(t, lines, 2)
	assert.Equal(t, "Oil Change", lines[0].ServiceName)
	assert.Equal(t, int64(1500), lines[1].Price)

	_, _, err = c.Quote(models.VehicleCar, nil)
	assert.ErrorIs(t, err, apperr.ErrEmptyServiceTypes)

	_, _, err = c.Quote(models.VehicleCar, []string{"Chain Adjustment"})
	assert.ErrorIs(t, err, apperr.ErrUnknownServiceType)

	_, _, err = c.Quote(models.VehicleCar, []string{"Oil Change", "AC Service", "Oil Change"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateServiceType)
}

const sampleYAML = `
prices:
  Wash: 150
  Oil Change: 450
vehicles:
  - type: Bike
    brands:
      - name: Royal Enfield
        models: [Classic 350, Himalayan]
    services: [Wash, Oil Change]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []models.VehicleType{models.VehicleBike}, c.VehicleTypes())
	assert.NoError(t, c.Validate(models.VehicleBike, "Royal Enfield", "Himalayan"))
	price, err := c.Price("Oil Change")
	require.NoError(t, err)
	assert.Equal(t, int64(450), price)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unpriced service": "prices: {Wash: 100}\nvehicles:\n  - type: Car\n    brands: [{name: A, models: [X]}]\n    services: [Polish]\n",
		"zero price":       "prices: {Wash: 0}\nvehicles:\n  - type: Car\n    brands: [{name: A, models: [X]}]\n    services: [Wash]\n",
		"brand no models":  "prices: {Wash: 10}\nvehicles:\n  - type: Car\n    brands: [{name: A}]\n    services: [Wash]\n",
		"duplicate type":   "prices: {Wash: 10}\nvehicles:\n  - type: Car\n    brands: [{name: A, models: [X]}]\n    services: [Wash]\n  - type: Car\n    brands: [{name: B, models: [Y]}]\n    services: [Wash]\n",
		"no vehicles":      "prices: {Wash: 10}\n",
		"bad yaml":         "prices: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.View().Vehicles, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
