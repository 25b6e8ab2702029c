package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

var reservationColumns = []string{
	"id", "requester_id", "requester_email", "requester_name", "equipment_ids",
	"start_time", "end_time", "purpose", "status", "created_at",
}

func (r *repository) collectReservations(ctx context.Context, op, q string, args []any) ([]model.Reservation, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		r.log.Error(op, zap.String("q", q), zap.Any("args", args))
		return nil, storeErr(op, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		return nil, storeErr(op, err)
	}
	return items, nil
}

func (r *repository) collectReservation(ctx context.Context, op, id, q string, args []any) (model.Reservation, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		r.log.Error(op, zap.String("q", q), zap.Any("args", args))
		return model.Reservation{}, storeErr(op, err)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, errs.NotFound("reservation", id)
		}
		return model.Reservation{}, storeErr(op, err)
	}
	return item, nil
}

func findBlockingQuery(equipmentIDs []string) sq.SelectBuilder {
	blocking := make([]string, 0, 2)
	for _, st := range model.Statuses {
		if st.IsBlocking() {
			blocking = append(blocking, string(st))
		}
	}
	b := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"status": blocking}).
		OrderBy("start_time")
	if len(equipmentIDs) > 0 {
		b = b.Where("equipment_ids && ?", equipmentIDs)
	}
	return b
}

func (r *repository) FindBlockingReservations(ctx context.Context, equipmentIDs []string) ([]model.Reservation, error) {
	q, args, err := findBlockingQuery(equipmentIDs).ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectReservations(ctx, "FindBlockingReservations", q, args)
}

func (r *repository) InsertReservation(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	q, args, err := qb.Insert(reservationTableName).
		Columns(reservationColumns...).
		Values(res.ID, res.RequesterID, res.RequesterEmail, res.RequesterName, res.EquipmentIDs,
			res.StartTime.UTC(), res.EndTime.UTC(), res.Purpose, string(res.Status), res.CreatedAt.UTC()).
		Suffix("returning " + strings.Join(reservationColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	return r.collectReservation(ctx, "InsertReservation", res.ID, q, args)
}

func (r *repository) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	q, args, err := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	return r.collectReservation(ctx, "GetReservation", id, q, args)
}

func (r *repository) ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	b := qb.Select(reservationColumns...).
		From(reservationTableName).
		OrderBy("start_time", "created_at")
	if filter.RequesterID != "" {
		b = b.Where(sq.Eq{"requester_id": filter.RequesterID})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectReservations(ctx, "ListReservations", q, args)
}

// updateStatusQuery only matches while the row still has status from.
func updateStatusQuery(id string, from, to model.Status) sq.UpdateBuilder {
	return qb.Update(reservationTableName).
		Set("status", string(to)).
		Where(sq.Eq{"id": id, "status": string(from)}).
		Suffix("returning " + strings.Join(reservationColumns, ", "))
}

// UpdateReservationStatus is a compare-and-set on the current status;
// a concurrent change surfaces as NotFound.
func (r *repository) UpdateReservationStatus(ctx context.Context, id string, from, to model.Status) (model.Reservation, error) {
	q, args, err := updateStatusQuery(id, from, to).ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	return r.collectReservation(ctx, "UpdateReservationStatus", id, q, args)
}

func (r *repository) CountByStatus(ctx context.Context, filter model.ReservationFilter) (model.Stats, error) {
	b := qb.Select("status", "count(*)").
		From(reservationTableName).
		GroupBy("status")
	if filter.RequesterID != "" {
		b = b.Where(sq.Eq{"requester_id": filter.RequesterID})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return model.Stats{}, err
	}
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return model.Stats{}, storeErr("CountByStatus", err)
	}
	defer rows.Close()

	var stats model.Stats
	for rows.Next() {
		var (
			st  string
			cnt int
		)
		if err := rows.Scan(&st, &cnt); err != nil {
			return model.Stats{}, storeErr("CountByStatus", err)
		}
		stats.Add(model.Status(st), cnt)
	}
	if err := rows.Err(); err != nil {
		return model.Stats{}, storeErr("CountByStatus", err)
	}
	return stats, nil
}

func (r *repository) CompleteExpired(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	q, args, err := qb.Update(reservationTableName).
		Set("status", string(model.StatusCompleted)).
		Where(sq.Eq{"status": string(model.StatusApproved)}).
		Where(sq.LtOrEq{"end_time": now.UTC()}).
		Suffix("returning " + strings.Join(reservationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectReservations(ctx, "CompleteExpired", q, args)
}
