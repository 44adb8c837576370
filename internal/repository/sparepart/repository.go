package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewSparePartRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListByIDsForUpdate locks the requested parts in id order so concurrent
// consumers cannot deadlock on overlapping batches.
func (r *repository) ListByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error) {
	q := r.sb.
		Select("id", "name", "price", "quantity_in_stock").
		From("spare_parts").
		Where(sq.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SparePart
	for rows.Next() {
		var p model.SparePart
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.QuantityInStock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// DecrementStock is guarded in SQL; the zero-rows case means the guard lost
// to a concurrent decrement even though the caller pre-checked.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	q := r.sb.
		Update("spare_parts").
		Set("quantity_in_stock", sq.Expr("quantity_in_stock - ?", qty)).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("quantity_in_stock >= ?", qty))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrInsufficientStock
	}

	return nil
}

func (r *repository) InsertUsed(ctx context.Context, rows []model.UsedSparePart) error {
	if len(rows) == 0 {
		return nil
	}

	q := r.sb.
		Insert("used_spare_parts").
		Columns("appointment_id", "spare_part_id", "quantity_used")
	for _, u := range rows {
		q = q.Values(u.AppointmentID, u.SparePartID, u.QuantityUsed)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	_, err = db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	return err
}

func (r *repository) ListUsedByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.UsedSparePart, error) {
	q := r.sb.
		Select("id", "appointment_id", "spare_part_id", "quantity_used").
		From("used_spare_parts").
		Where(sq.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at", "id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UsedSparePart
	for rows.Next() {
		var u model.UsedSparePart
		if err := rows.Scan(&u.ID, &u.AppointmentID, &u.SparePartID, &u.QuantityUsed); err != nil {
			return nil, err
		}
		out = append(out, u)
	}

	return out, rows.Err()
}
