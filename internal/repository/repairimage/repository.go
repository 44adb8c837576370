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

func NewRepairImageRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) InsertBatch(ctx context.Context, images []model.RepairImage) ([]model.RepairImage, error) {
	if len(images) == 0 {
		return nil, nil
	}

	q := r.sb.
		Insert("repair_images").
		Columns("appointment_id", "kind", "url")
	for _, img := range images {
		q = q.Values(img.AppointmentID, img.Kind, img.URL)
	}
	q = q.Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RepairImage, 0, len(images))
	for i := 0; rows.Next(); i++ {
		img := images[i]
		if err := rows.Scan(&img.ID); err != nil {
			return nil, err
		}
		out = append(out, img)
	}

	return out, rows.Err()
}

func (r *repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.RepairImage, error) {
	q := r.sb.
		Select("id", "appointment_id", "kind", "url").
		From("repair_images").
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

	var out []model.RepairImage
	for rows.Next() {
		var img model.RepairImage
		if err := rows.Scan(&img.ID, &img.AppointmentID, &img.Kind, &img.URL); err != nil {
			return nil, err
		}
		out = append(out, img)
	}

	return out, rows.Err()
}
