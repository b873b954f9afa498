package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"
	"ms-servicing/internal/models"

	"github.com/uptrace/bun"
)

// DB is the SQL ticket store.
type DB struct {
	Bun *bun.DB
	Now func() time.Time
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB, Now: time.Now}
}

// Insert writes the ticket and its line items in one transaction and
// returns the assigned id.
func (d *DB) Insert(ctx context.Context, t *models.Ticket) (int64, error) {
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(t).Exec(ctx); err != nil {
			return err
		}
		if len(t.Lines) == 0 {
			return nil
		}
		for i := range t.Lines {
			t.Lines[i].TicketID = t.ID
		}
		_, err := tx.NewInsert().Model(&t.Lines).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, apperr.Storage("insert ticket", err)
	}
	return t.ID, nil
}

// Get returns nil, nil when no ticket has the id.
func (d *DB) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Relation("Lines", orderLines).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get ticket", err)
	}
	return &ticket, nil
}

func orderLines(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("id ASC")
}

func (d *DB) List(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Relation("Lines", orderLines).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("list tickets", err)
	}
	return tickets, nil
}

func (d *DB) ListByCustomer(ctx context.Context, customerID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Relation("Lines", orderLines).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("list customer tickets", err)
	}
	return tickets, nil
}

// UpdateFields writes only the columns named by update, plus updated_at, in
// a single statement. The Expect guards become WHERE conditions. It reports
// whether a row matched.
func (d *DB) UpdateFields(ctx context.Context, id int64, update models.TicketUpdate) (bool, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return false, fmt.Errorf("ticket %d: nothing to update: %w", id, apperr.ErrInvalidInput)
	}

	var values models.Ticket
	update.Apply(&values, d.Now().UTC())

	q := d.Bun.NewUpdate().
		Model(&values).
		Column(append(cols, "updated_at")...).
		Where("id = ?", id)
	if update.ExpectStatus != nil {
		q = q.Where("status = ?", *update.ExpectStatus)
	}
	if update.ExpectExtraCharges != nil {
		q = q.Where("extra_charges = ?", *update.ExpectExtraCharges)
	}
	if update.ExpectPaidAmount != nil {
		q = q.Where("paid_amount = ?", *update.ExpectPaidAmount)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, apperr.Storage("update ticket", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("update ticket", err)
	}
	return n > 0, nil
}

// Delete removes the ticket and its line items. It reports whether the
// ticket existed.
func (d *DB) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted int64
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.TicketLine)(nil)).Where("ticket_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Ticket)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, apperr.Storage("delete ticket", err)
	}
	return deleted > 0, nil
}
