package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/catalog"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"

	"github.com/google/uuid"
)

type VehicleDBLayer interface {
	InsertVehicle(ctx context.Context, v *models.Vehicle) error
	PlateExists(ctx context.Context, plate string) (bool, error)
	ListVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error)
}

type PlateLocker interface {
	Lock(ctx context.Context, plate, owner string) (bool, error)
	Unlock(ctx context.Context, plate, owner string) error
}

type VehicleService struct {
	DB      VehicleDBLayer
	Catalog *catalog.Catalog
	Locker  PlateLocker
	Logger  *logger.Logger
	Now     func() time.Time
}

func NewVehicleService(db VehicleDBLayer, cat *catalog.Catalog, locker PlateLocker, log *logger.Logger) *VehicleService {
	return &VehicleService{
		DB:      db,
		Catalog: cat,
		Locker:  locker,
		Logger:  log,
		Now:     time.Now,
	}
}

// NormalizePlate trims and upper-cases a plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Register validates in order: plate present, catalog combination, plate
// unused. The plate is stored upper-cased.
func (s *VehicleService) Register(ctx context.Context, customerID int64, req models.RegisterVehicleRequest) (*models.Vehicle, error) {
	plate := NormalizePlate(req.Plate)
	if plate == "" {
		return nil, apperr.ErrEmptyPlate
	}
	if err := s.Catalog.Validate(req.Type, req.Brand, req.Model); err != nil {
		if errors.Is(err, apperr.ErrInvalidVehicleType) {
			return nil, fmt.Errorf("vehicle type %q: %w", req.Type, apperr.ErrInvalidCatalogCombination)
		}
		return nil, err
	}

	owner := uuid.NewString()
	locked, err := s.Locker.Lock(ctx, plate, owner)
	if err != nil {
		return nil, apperr.Storage("lock plate", err)
	}
	if !locked {
		return nil, fmt.Errorf("plate %s is being registered: %w", plate, apperr.ErrDuplicatePlate)
	}
	defer func() {
		if err := s.Locker.Unlock(context.WithoutCancel(ctx), plate, owner); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Failed to release plate lock %s: %v", plate, err))
		}
	}()

	exists, err := s.DB.PlateExists(ctx, plate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("plate %s: %w", plate, apperr.ErrDuplicatePlate)
	}

	vehicle := &models.Vehicle{
		CustomerID: customerID,
		Type:       req.Type,
		Brand:      req.Brand,
		Model:      req.Model,
		Plate:      plate,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.DB.InsertVehicle(ctx, vehicle); err != nil {
		return nil, err
	}

	s.Logger.Info("VEHICLE", fmt.Sprintf("Registered %s %s %s (%s) for customer %d", vehicle.Type, vehicle.Brand, vehicle.Model, plate, customerID))
	return vehicle, nil
}

func (s *VehicleService) ListForCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	return s.DB.ListVehiclesByCustomer(ctx, customerID)
}

// GetOwned returns ErrVehicleNotOwned when the vehicle is missing or
// belongs to someone else.
func (s *VehicleService) GetOwned(ctx context.Context, customerID, vehicleID int64) (*models.Vehicle, error) {
	vehicle, err := s.DB.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.CustomerID != customerID {
		return nil, fmt.Errorf("vehicle %d: %w", vehicleID, apperr.ErrVehicleNotOwned)
	}
	return vehicle, nil
}

// Get is the unscoped lookup used by admin views. Returns nil, nil when absent.
func (s *VehicleService) Get(ctx context.Context, vehicleID int64) (*models.Vehicle, error) {
	return s.DB.GetVehicle(ctx, vehicleID)
}
