package mechanics

import (
	"context"
	"fmt"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"
	"ms-servicing/internal/models"

	"github.com/uptrace/bun"
)

// DB reads the mechanics reference table. Rows come from the seed
// migration; there is no write path.
type DB struct {
	Bun *bun.DB
}

func (d *DB) ListMechanics(ctx context.Context) ([]models.Mechanic, error) {
	var mechanics []models.Mechanic
	err := d.Bun.NewSelect().Model(&mechanics).OrderExpr("name ASC, id ASC").Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("list mechanics", err)
	}
	return mechanics, nil
}

func (d *DB) GetMechanic(ctx context.Context, id int64) (*models.Mechanic, error) {
	var mechanic models.Mechanic
	err := d.Bun.NewSelect().Model(&mechanic).Where("id = ?", id).Limit(1).Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get mechanic", err)
	}
	return &mechanic, nil
}

type MechanicDBLayer interface {
	ListMechanics(ctx context.Context) ([]models.Mechanic, error)
	GetMechanic(ctx context.Context, id int64) (*models.Mechanic, error)
}

type Service struct {
	DB MechanicDBLayer
}

func NewService(db MechanicDBLayer) *Service {
	return &Service{DB: db}
}

func (s *Service) List(ctx context.Context) ([]models.Mechanic, error) {
	return s.DB.ListMechanics(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Mechanic, error) {
	mechanic, err := s.DB.GetMechanic(ctx, id)
	if err != nil {
		return nil, err
	}
	if mechanic == nil {
		return nil, fmt.Errorf("mechanic %d: %w", id, apperr.ErrMechanicNotFound)
	}
	return mechanic, nil
}
