package db

import (
	"context"
	"fmt"
	"strings"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"
	"ms-servicing/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// InsertVehicle stores v and sets its ID. A plate collision at the
// constraint level is reported as ErrDuplicatePlate.
func (d *DB) InsertVehicle(ctx context.Context, v *models.Vehicle) error {
	_, err := d.Bun.NewInsert().Model(v).Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("plate %s: %w", v.Plate, apperr.ErrDuplicatePlate)
	}
	return apperr.Storage("insert vehicle", err)
}

// PlateExists compares case-insensitively.
func (d *DB) PlateExists(ctx context.Context, plate string) (bool, error) {
	exists, err := d.Bun.NewSelect().
		Model((*models.Vehicle)(nil)).
		Where("UPPER(plate) = ?", strings.ToUpper(plate)).
		Exists(ctx)
	if err != nil {
		return false, apperr.Storage("check plate", err)
	}
	return exists, nil
}

func (d *DB) ListVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicles).
		Where("customer_id = ?", customerID).
		OrderExpr("vehicle_type ASC, brand ASC, model ASC, plate ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("list vehicles", err)
	}
	return vehicles, nil
}

// GetVehicle returns nil, nil when no vehicle has the id.
func (d *DB) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicle).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get vehicle", err)
	}
	return &vehicle, nil
}
