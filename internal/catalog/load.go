package catalog

import (
	"fmt"
	"os"

	"ms-servicing/internal/models"

	"gopkg.in/yaml.v3"
)

type fileVehicle struct {
	Type     models.VehicleType `yaml:"type"`
	Brands   []Brand            `yaml:"brands"`
	Services []string           `yaml:"services"`
}

type fileCatalog struct {
	Prices   map[string]int64 `yaml:"prices"`
	Vehicles []fileVehicle    `yaml:"vehicles"`
}

// Parse builds a catalog from YAML. Vehicle order in the document is kept.
func Parse(data []byte) (*Catalog, error) {
	var doc fileCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Vehicles) == 0 {
		return nil, fmt.Errorf("catalog defines no vehicle types")
	}

	types := make([]models.VehicleType, 0, len(doc.Vehicles))
	specs := make(map[models.VehicleType]VehicleSpec, len(doc.Vehicles))
	for _, v := range doc.Vehicles {
		if v.Type == "" {
			return nil, fmt.Errorf("catalog vehicle entry without type")
		}
		if _, dup := specs[v.Type]; dup {
			return nil, fmt.Errorf("vehicle type %q defined twice", v.Type)
		}
		types = append(types, v.Type)
		specs[v.Type] = VehicleSpec{Brands: v.Brands, Services: v.Services}
	}
	return New(doc.Prices, types, specs)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}
