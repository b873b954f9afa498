package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Vehicle struct {
	bun.BaseModel `bun:"table:vehicles"`

	ID         int64       `bun:"id,pk,autoincrement" json:"id"`
	CustomerID int64       `bun:"customer_id,notnull" json:"customer_id"`
	Type       VehicleType `bun:"vehicle_type,notnull" json:"vehicle_type"`
	Brand      string      `bun:"brand,notnull" json:"brand"`
	Model      string      `bun:"model,notnull" json:"model"`
	Plate      string      `bun:"plate,unique,notnull" json:"plate"`
	CreatedAt  time.Time   `bun:"created_at,notnull" json:"created_at"`
}

type RegisterVehicleRequest struct {
	Type  VehicleType `json:"vehicle_type"`
	Brand string      `json:"brand"`
	Model string      `json:"model"`
	Plate string      `json:"plate"`
}
