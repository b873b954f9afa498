package db_test

import (
	"context"
	"testing"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"
	"ms-servicing/internal/models"
	"ms-servicing/internal/vehicles/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	bunDB, err := database.OpenSQLiteMemory(context.Background())
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}, bunDB
}

func vehicle(customerID int64, vt models.VehicleType, brand, model, plate string) *models.Vehicle {
	return &models.Vehicle{
		CustomerID: customerID,
		Type:       vt,
		Brand:      brand,
		Model:      model,
		Plate:      plate,
		CreatedAt:  time.Now(),
	}
}

func TestInsertAndGetVehicle(t *testing.T) {
	vehicleDB, _ := setupTestDB(t)
	ctx := context.Background()

	v := vehicle(1, models.VehicleCar, "Toyota", "Corolla", "MH12AB1234")
	require.NoError(t, vehicleDB.InsertVehicle(ctx, v))
	assert.NotZero(t, v.ID)

	got, err := vehicleDB.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MH12AB1234", got.Plate)
	assert.Equal(t, models.VehicleCar, got.Type)

	missing, err := vehicleDB.GetVehicle(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertVehicle_DuplicatePlate(t *testing.T) {
	vehicleDB, _ := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, vehicleDB.InsertVehicle(ctx, vehicle(1, models.VehicleBike, "Hero", "Splendor", "KA01XY9999")))
	err := vehicleDB.InsertVehicle(ctx, vehicle(2, models.VehicleBike, "Bajaj", "Pulsar", "KA01XY9999"))
	assert.ErrorIs(t, err, apperr.ErrDuplicatePlate)
}

func TestPlateExists_CaseInsensitive(t *testing.T) {
	vehicleDB, _ := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, vehicleDB.InsertVehicle(ctx, vehicle(1, models.VehicleCar, "Honda", "City", "MH12AB1234")))

	exists, err := vehicleDB.PlateExists(ctx, "mh12ab1234")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = vehicleDB.PlateExists(ctx, "MH12AB0000")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListVehiclesByCustomer_Ordered(t *testing.T) {
	vehicleDB, _ := setupTestDB(t)
	ctx := context.Background()

	for _, v := range []*models.Vehicle{
		vehicle(1, models.VehicleCar, "Toyota", "Corolla", "P4"),
		vehicle(1, models.VehicleCar, "Honda", "City", "P3"),
		vehicle(1, models.VehicleBike, "Yamaha", "FZ", "P2"),
		vehicle(1, models.VehicleCar, "Honda", "City", "P1"),
		vehicle(2, models.VehicleCar, "Honda", "Civic", "P5"),
	} {
		require.NoError(t, vehicleDB.InsertVehicle(ctx, v))
	}

	list, err := vehicleDB.ListVehiclesByCustomer(ctx, 1)
	require.NoError(t, err)

	var plates []string
	for _, v := range list {
		plates = append(plates, v.Plate)
	}
	assert.Equal(t, []string{"P2", "P1", "P3", "P4"}, plates)
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	vehicleDB, bunDB := setupTestDB(t)
	bunDB.Close()

	_, err := vehicleDB.ListVehiclesByCustomer(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}
