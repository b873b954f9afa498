package database

import (
	"context"
	"fmt"

	"ms-servicing/internal/models"

	"github.com/uptrace/bun"
)

// DefaultMechanics is the crew seeded into a fresh database.
var DefaultMechanics = []models.Mechanic{
	{Name: "Arjun Mehta", Contact: "9876500001"},
	{Name: "Kavya Nair", Contact: "9876500002"},
	{Name: "Ravi Kumar", Contact: "9876500003"},
	{Name: "Sameer Khan", Contact: "9876500004"},
}

func tables() []interface{} {
	return []interface{}{
		(*models.Customer)(nil),
		(*models.Mechanic)(nil),
		(*models.Vehicle)(nil),
		(*models.Ticket)(nil),
		(*models.TicketLine)(nil),
	}
}

// CreateSchema creates every table from the bun models and seeds mechanics
// when the table is empty. PostgreSQL deployments use the SQL migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, m := range tables() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	_, err := db.NewCreateIndex().
		Model((*models.TicketLine)(nil)).
		Index("ticket_lines_ticket_id_idx").
		IfNotExists().
		Column("ticket_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create ticket_lines index: %w", err)
	}

	count, err := db.NewSelect().Model((*models.Mechanic)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count mechanics: %w", err)
	}
	if count == 0 {
		seed := append([]models.Mechanic(nil), DefaultMechanics...)
		if _, err := db.NewInsert().Model(&seed).Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed mechanics: %w", err)
		}
	}
	return nil
}

// DropSchema removes every table, children first.
func DropSchema(ctx context.Context, db *bun.DB) error {
	all := tables()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(all[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", all[i], err)
		}
	}
	return nil
}
