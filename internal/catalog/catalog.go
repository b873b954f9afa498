package catalog

import (
	"fmt"
	"sort"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"
)

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	prices   map[string]int64
	vehicles map[models.VehicleType]VehicleSpec
	order    []models.VehicleType
}

// VehicleSpec lists the brands (each with ordered models) and the services
// offered for one vehicle type.
type VehicleSpec struct {
	Brands   []Brand  `yaml:"brands" json:"brands"`
	Services []string `yaml:"services" json:"services"`
}

type Brand struct {
	Name   string   `yaml:"name" json:"name"`
	Models []string `yaml:"models" json:"models"`
}

func New(prices map[string]int64, types []models.VehicleType, specs map[models.VehicleType]VehicleSpec) (*Catalog, error) {
	c := &Catalog{
		prices:   make(map[string]int64, len(prices)),
		vehicles: make(map[models.VehicleType]VehicleSpec, len(specs)),
	}
	for name, price := range prices {
		if price <= 0 {
			return nil, fmt.Errorf("service %q: price must be positive, got %d", name, price)
		}
		c.prices[name] = price
	}
	for _, vt := range types {
		spec, ok := specs[vt]
		if !ok {
			return nil, fmt.Errorf("vehicle type %q has no definition", vt)
		}
		if len(spec.Brands) == 0 {
			return nil, fmt.Errorf("vehicle type %q has no brands", vt)
		}
		for _, b := range spec.Brands {
			if len(b.Models) == 0 {
				return nil, fmt.Errorf("vehicle type %q brand %q has no models", vt, b.Name)
			}
		}
		if len(spec.Services) == 0 {
			return nil, fmt.Errorf("vehicle type %q offers no services", vt)
		}
		for _, s := range spec.Services {
			if _, ok := c.prices[s]; !ok {
				return nil, fmt.Errorf("vehicle type %q: service %q has no price", vt, s)
			}
		}
		c.vehicles[vt] = spec
		c.order = append(c.order, vt)
	}
	return c, nil
}

// Default returns the catalog the workshop ships with.
func Default() *Catalog {
	c, err := New(
		map[string]int64{
			"Oil Change":          500,
			"Engine Repair":       3000,
			"AC Service":          1500,
			"General Maintenance": 1000,
			"Chain Adjustment":    300,
			"Brake Check":         200,
		},
		[]models.VehicleType{models.VehicleCar, models.VehicleBike},
		map[models.VehicleType]VehicleSpec{
			models.VehicleCar: {
				Brands: []Brand{
					{Name: "Toyota", Models: []string{"Corolla", "Camry", "Fortuner"}},
					{Name: "Honda", Models: []string{"Civic", "Accord", "City"}},
					{Name: "Hyundai", Models: []string{"i20", "Creta", "Verna"}},
				},
				Services: []string{"Oil Change", "Engine Repair", "AC Service", "General Maintenance"},
			},
			models.VehicleBike: {
				Brands: []Brand{
					{Name: "Yamaha", Models: []string{"FZ", "R15", "MT-15"}},
					{Name: "Hero", Models: []string{"Splendor", "HF Deluxe", "Glamour"}},
					{Name: "Bajaj", Models: []string{"Pulsar", "Avenger", "Dominar"}},
				},
				Services: []string{"Oil Change", "Chain Adjustment", "Brake Check", "General Maintenance"},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Prices returns a copy of the service price list.
func (c *Catalog) Prices() map[string]int64 {
	out := make(map[string]int64, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

func (c *Catalog) Price(service string) (int64, error) {
	price, ok := c.prices[service]
	if !ok {
		return 0, fmt.Errorf("%q: %w", service, apperr.ErrUnknownServiceType)
	}
	return price, nil
}

func (c *Catalog) VehicleTypes() []models.VehicleType {
	return append([]models.VehicleType(nil), c.order...)
}

func (c *Catalog) spec(vt models.VehicleType) (VehicleSpec, error) {
	spec, ok := c.vehicles[vt]
	if !ok {
		return VehicleSpec{}, fmt.Errorf("%q: %w", vt, apperr.ErrInvalidVehicleType)
	}
	return spec, nil
}

// AllowedServices returns the service names offered for vt, sorted.
func (c *Catalog) AllowedServices(vt models.VehicleType) ([]string, error) {
	spec, err := c.spec(vt)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), spec.Services...)
	sort.Strings(out)
	return out, nil
}

func (c *Catalog) AllowedBrands(vt models.VehicleType) ([]string, error) {
	spec, err := c.spec(vt)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(spec.Brands))
	for _, b := range spec.Brands {
		out = append(out, b.Name)
	}
	return out, nil
}

// AllowedModels returns nil with no error for a brand the type does not carry.
func (c *Catalog) AllowedModels(vt models.VehicleType, brand string) ([]string, error) {
	spec, err := c.spec(vt)
	if err != nil {
		return nil, err
	}
	for _, b := range spec.Brands {
		if b.Name == brand {
			return append([]string(nil), b.Models...), nil
		}
	}
	return nil, nil
}

// Validate checks that the (type, brand, model) triple exists.
func (c *Catalog) Validate(vt models.VehicleType, brand, model string) error {
	names, err := c.AllowedModels(vt, brand)
	if err != nil {
		return err
	}
	for _, m := range names {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("%s %s %s: %w", vt, brand, model, apperr.ErrInvalidCatalogCombination)
}

// ServiceAllowed reports ErrUnknownServiceType when service is not offered for vt.
func (c *Catalog) ServiceAllowed(vt models.VehicleType, service string) error {
	spec, err := c.spec(vt)
	if err != nil {
		return err
	}
	for _, s := range spec.Services {
		if s == service {
			return nil
		}
	}
	return fmt.Errorf("%q for %s: %w", service, vt, apperr.ErrUnknownServiceType)
}

// Quote prices each selected service and returns the frozen line items.
// The selection is a set: naming a service twice is rejected.
func (c *Catalog) Quote(vt models.VehicleType, services []string) ([]models.TicketLine, int64, error) {
	if len(services) == 0 {
		return nil, 0, apperr.ErrEmptyServiceTypes
	}
	lines := make([]models.TicketLine, 0, len(services))
	seen := make(map[string]bool, len(services))
	var total int64
	for _, s := range services {
		if seen[s] {
			return nil, 0, fmt.Errorf("%q: %w", s, apperr.ErrDuplicateServiceType)
		}
		seen[s] = true
		if err := c.ServiceAllowed(vt, s); err != nil {
			return nil, 0, err
		}
		price, err := c.Price(s)
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, models.TicketLine{ServiceName: s, Price: price})
		total += price
	}
	return lines, total, nil
}

// View is the JSON shape served to selection UIs.
type View struct {
	Prices   map[string]int64                   `json:"prices"`
	Vehicles map[models.VehicleType]VehicleSpec `json:"vehicles"`
	Types    []models.VehicleType               `json:"vehicle_types"`
}

func (c *Catalog) View() View {
	vehicles := make(map[models.VehicleType]VehicleSpec, len(c.vehicles))
	for k, v := range c.vehicles {
		vehicles[k] = v
	}
	return View{Prices: c.Prices(), Vehicles: vehicles, Types: c.VehicleTypes()}
}
