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

var orderColumns = []string{
	"id", "customer_id", "staff_id", "status", "total_amount",
	"payment_method", "order_date", "updated_by", "updated_at",
}

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewOrderRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, o *model.ServiceOrder) (uuid.UUID, error) {
	q := r.sb.
		Insert("service_orders").
		Columns("customer_id", "staff_id", "status", "total_amount", "updated_by").
		Values(o.CustomerID, o.StaffID, o.Status, o.TotalAmount, o.UpdatedBy).
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

func (r *repository) ByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	return r.one(ctx, r.sb.Select(orderColumns...).From("service_orders").Where(sq.Eq{"id": id}))
}

// ByIDForUpdate locks the order row; every multi-line mutation takes this
// lock first to serialize concurrent settlement attempts.
func (r *repository) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	return r.one(ctx, r.sb.Select(orderColumns...).From("service_orders").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

func (r *repository) Update(ctx context.Context, upd *model.OrderUpdate) error {
	if upd.ID == uuid.Nil {
		return errors.New("empty order id")
	}

	set := sq.Eq{}

	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.TotalAmount != nil {
		set["total_amount"] = *upd.TotalAmount
	}
	if upd.PaymentMethod != nil {
		set["payment_method"] = *upd.PaymentMethod
	}
	if upd.UpdatedBy != nil {
		set["updated_by"] = *upd.UpdatedBy
	}

	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = sq.Expr("now()")

	q := r.sb.
		Update("service_orders").
		SetMap(set).
		Where(sq.Eq{"id": upd.ID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// AddTotal shifts the running order total by delta, which may be negative.
func (r *repository) AddTotal(ctx context.Context, id uuid.UUID, delta int64, updatedBy uuid.UUID) error {
	q := r.sb.
		Update("service_orders").
		Set("total_amount", sq.Expr("total_amount + ?", delta)).
		Set("updated_by", updatedBy).
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
		return model.ErrOrderNotFound
	}

	return nil
}

func (r *repository) one(ctx context.Context, q sq.SelectBuilder) (*model.ServiceOrder, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		o             model.ServiceOrder
		paymentMethod *string
	)
	err = db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...).Scan(
		&o.ID,
		&o.CustomerID,
		&o.StaffID,
		&o.Status,
		&o.TotalAmount,
		&paymentMethod,
		&o.OrderDate,
		&o.UpdatedBy,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, err
	}

	if paymentMethod != nil {
		pm := model.PaymentMethod(*paymentMethod)
		o.PaymentMethod = &pm
	}

	return &o, nil
}
