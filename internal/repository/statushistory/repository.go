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

func NewStatusHistoryRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Append writes one immutable audit row. History rows are never updated or
// deleted.
func (r *repository) Append(ctx context.Context, ch *model.StatusChange) (uuid.UUID, error) {
	q := r.sb.
		Insert("status_histories").
		Columns("appointment_id", "old_status", "new_status", "changed_by").
		Values(ch.AppointmentID, ch.OldStatus, ch.NewStatus, ch.ChangedBy).
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

func (r *repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.StatusChange, error) {
	q := r.sb.
		Select("id", "appointment_id", "old_status", "new_status", "changed_by", "created_at").
		From("status_histories").
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

	var out []model.StatusChange
	for rows.Next() {
		var ch model.StatusChange
		if err := rows.Scan(&ch.ID, &ch.AppointmentID, &ch.OldStatus, &ch.NewStatus, &ch.ChangedBy, &ch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}

	return out, rows.Err()
}
