package models

import "github.com/uptrace/bun"

type Mechanic struct {
	bun.BaseModel `bun:"table:mechanics"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Contact string `bun:"contact" json:"contact"`
}
