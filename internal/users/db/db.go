package db

import (
	"context"
	"fmt"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"
	"ms-servicing/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) InsertCustomer(ctx context.Context, c *models.Customer) error {
	_, err := d.Bun.NewInsert().Model(c).Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", c.Email, apperr.ErrDuplicateEmail)
	}
	return apperr.Storage("insert customer", err)
}

// GetCustomerByEmail expects an already lower-cased email and returns nil, nil when absent.
func (d *DB) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get customer by email", err)
	}
	return &customer, nil
}

func (d *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get customer", err)
	}
	return &customer, nil
}

func (d *DB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := d.Bun.NewSelect().
		Model(&customers).
		OrderExpr("full_name ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("list customers", err)
	}
	return customers, nil
}
