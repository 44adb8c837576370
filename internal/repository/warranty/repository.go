package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewWarrantyRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, w *model.ServiceWarranty) (uuid.UUID, error) {
	q := r.sb.
		Insert("service_warranties").
		Columns("order_detail_id", "service_id", "start_date", "end_date", "status").
		Values(w.OrderDetailID, w.ServiceID, w.StartDate, w.EndDate, w.Status).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *repository) ByOrderDetailID(ctx context.Context, orderDetailID uuid.UUID) (*model.ServiceWarranty, error) {
	q := r.sb.
		Select("id", "order_detail_id", "service_id", "start_date", "end_date", "status", "claim_count").
		From("service_warranties").
		Where(sq.Eq{"order_detail_id": orderDetailID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var w model.ServiceWarranty
	err = db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...).Scan(
		&w.ID,
		&w.OrderDetailID,
		&w.ServiceID,
		&w.StartDate,
		&w.EndDate,
		&w.Status,
		&w.ClaimCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWarrantyNotFound
		}
		return nil, err
	}

	return &w, nil
}
