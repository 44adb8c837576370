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

var detailColumns = []string{
	"id", "service_order_id", "service_id", "status",
	"base_price", "additional_price", "parts_price", "final_price",
}

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewOrderDetailRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, d *model.ServiceOrderDetail) (uuid.UUID, error) {
	q := r.sb.
		Insert("service_order_details").
		Columns("service_order_id", "service_id", "status", "base_price", "additional_price", "parts_price", "final_price").
		Values(d.OrderID, d.ServiceID, d.Status, d.BasePrice, d.AdditionalPrice, d.PartsPrice, d.FinalPrice).
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

func (r *repository) ByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrderDetail, error) {
	return r.one(ctx, r.sb.Select(detailColumns...).From("service_order_details").Where(sq.Eq{"id": id}))
}

func (r *repository) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceOrderDetail, error) {
	return r.one(ctx, r.sb.Select(detailColumns...).From("service_order_details").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.ServiceOrderDetail, error) {
	return r.list(ctx, r.sb.Select(detailColumns...).From("service_order_details").
		Where(sq.Eq{"service_order_id": orderID}).
		OrderBy("created_at", "id"))
}

// ListByOrderIDForUpdate locks every line of the order so the settlement
// arithmetic cannot race a concurrent quote or parts write.
func (r *repository) ListByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) ([]model.ServiceOrderDetail, error) {
	return r.list(ctx, r.sb.Select(detailColumns...).From("service_order_details").
		Where(sq.Eq{"service_order_id": orderID}).
		OrderBy("created_at", "id").
		Suffix("FOR UPDATE"))
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DetailStatus) error {
	q := r.sb.
		Update("service_order_details").
		Set("status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrOrderDetailNotFound
	}

	return nil
}

// SetQuote overwrites the priced components; parts cost is preserved and the
// final price is recomputed in the same statement.
func (r *repository) SetQuote(ctx context.Context, id uuid.UUID, basePrice, additionalPrice int64) error {
	q := r.sb.
		Update("service_order_details").
		Set("base_price", basePrice).
		Set("additional_price", additionalPrice).
		Set("final_price", sq.Expr("? + ? + parts_price", basePrice, additionalPrice)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrOrderDetailNotFound
	}

	return nil
}

// AddPartsPrice shifts both the parts component and the final price by delta.
func (r *repository) AddPartsPrice(ctx context.Context, id uuid.UUID, delta int64) error {
	q := r.sb.
		Update("service_order_details").
		Set("parts_price", sq.Expr("parts_price + ?", delta)).
		Set("final_price", sq.Expr("final_price + ?", delta)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrOrderDetailNotFound
	}

	return nil
}

func (r *repository) one(ctx context.Context, q sq.SelectBuilder) (*model.ServiceOrderDetail, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var d model.ServiceOrderDetail
	err = db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...).Scan(
		&d.ID,
		&d.OrderID,
		&d.ServiceID,
		&d.Status,
		&d.BasePrice,
		&d.AdditionalPrice,
		&d.PartsPrice,
		&d.FinalPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderDetailNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (r *repository) list(ctx context.Context, q sq.SelectBuilder) ([]model.ServiceOrderDetail, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ServiceOrderDetail
	for rows.Next() {
		var d model.ServiceOrderDetail
		err := rows.Scan(
			&d.ID,
			&d.OrderID,
			&d.ServiceID,
			&d.Status,
			&d.BasePrice,
			&d.AdditionalPrice,
			&d.PartsPrice,
			&d.FinalPrice,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
