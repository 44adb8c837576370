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

var appointmentColumns = []string{
	"id", "user_id", "service_order_id", "order_detail_id", "technician_id",
	"status", "scheduled_date", "scheduled_time", "address", "phone",
	"customer_note", "employee_note", "diagnosis", "cancel_reason",
	"cancelled_by", "reschedule_count",
}

type repository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewAppointmentRepository(pool *pgxpool.Pool) *repository {
	return &repository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, a *model.Appointment) (uuid.UUID, error) {
	q := r.sb.
		Insert("appointments").
		Columns("user_id", "service_order_id", "order_detail_id", "status",
			"scheduled_date", "scheduled_time", "address", "phone", "customer_note").
		Values(a.UserID, a.ServiceOrderID, a.OrderDetailID, a.Status,
			a.ScheduledDate, a.ScheduledTime, a.Address, a.Phone, a.CustomerNote).
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

func (r *repository) ByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.one(ctx, r.sb.Select(appointmentColumns...).From("appointments").Where(sq.Eq{"id": id}))
}

// ByIDForUpdate locks the appointment row for the rest of the transaction.
func (r *repository) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.one(ctx, r.sb.Select(appointmentColumns...).From("appointments").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.Appointment, error) {
	q := r.sb.
		Select(appointmentColumns...).
		From("appointments").
		Where(sq.Eq{"service_order_id": orderID}).
		OrderBy("created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, upd *model.AppointmentUpdate) error {
	if upd.ID == uuid.Nil {
		return errors.New("empty appointment id")
	}

	set := sq.Eq{}

	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.TechnicianID != nil {
		set["technician_id"] = *upd.TechnicianID
	}
	if upd.ScheduledDate != nil {
		set["scheduled_date"] = *upd.ScheduledDate
	}
	if upd.ScheduledTime != nil {
		set["scheduled_time"] = *upd.ScheduledTime
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.CustomerNote != nil {
		set["customer_note"] = *upd.CustomerNote
	}
	if upd.EmployeeNote != nil {
		set["employee_note"] = *upd.EmployeeNote
	}
	if upd.Diagnosis != nil {
		set["diagnosis"] = *upd.Diagnosis
	}
	if upd.CancelReason != nil {
		set["cancel_reason"] = *upd.CancelReason
	}
	if upd.CancelledBy != nil {
		set["cancelled_by"] = *upd.CancelledBy
	}
	if upd.RescheduleCount != nil {
		set["reschedule_count"] = *upd.RescheduleCount
	}

	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = sq.Expr("now()")

	q := r.sb.
		Update("appointments").
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
		return model.ErrAppointmentNotFound
	}

	return nil
}

// UpsertStatusSnapshot maintains the one-row-per-appointment current-status
// projection alongside the append-only history.
func (r *repository) UpsertStatusSnapshot(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus) error {
	q := r.sb.
		Insert("appointment_statuses").
		Columns("appointment_id", "status").
		Values(appointmentID, status).
		Suffix("ON CONFLICT (appointment_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	_, err = db.QuerierFrom(ctx, r.pool).Exec(ctx, sqlStr, args...)
	return err
}

func (r *repository) one(ctx context.Context, q sq.SelectBuilder) (*model.Appointment, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	a, err := scanAppointment(db.QuerierFrom(ctx, r.pool).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAppointmentNotFound
		}
		return nil, err
	}

	return a, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a           model.Appointment
		cancelledBy *string
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ServiceOrderID,
		&a.OrderDetailID,
		&a.TechnicianID,
		&a.Status,
		&a.ScheduledDate,
		&a.ScheduledTime,
		&a.Address,
		&a.Phone,
		&a.CustomerNote,
		&a.EmployeeNote,
		&a.Diagnosis,
		&a.CancelReason,
		&cancelledBy,
		&a.RescheduleCount,
	)
	if err != nil {
		return nil, err
	}

	if cancelledBy != nil {
		party := model.CancelParty(*cancelledBy)
		a.CancelledBy = &party
	}

	return &a, nil
}
