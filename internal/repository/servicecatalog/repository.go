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

func NewServiceCatalogRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) ByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	q := r.sb.
		Select("id", "name", "is_active", "price", "warranty_period", "warranty_unit").
		From("services").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var svc model.Service
	err = db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...).Scan(
		&svc.ID,
		&svc.Name,
		&svc.IsActive,
		&svc.Price,
		&svc.WarrantyPeriod,
		&svc.WarrantyUnit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrServiceNotFound
		}
		return nil, err
	}

	return &svc, nil
}
