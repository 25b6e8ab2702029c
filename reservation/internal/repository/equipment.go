package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

var equipmentColumns = []string{"id", "name", "type", "description", "is_active"}

func (r *repository) ListActiveEquipment(ctx context.Context) ([]model.Equipment, error) {
	q, args, err := qb.Select(equipmentColumns...).
		From(equipmentTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectEquipment(ctx, "ListActiveEquipment", q, args)
}

// GetEquipment returns the records found among ids, active or not.
func (r *repository) GetEquipment(ctx context.Context, ids []string) ([]model.Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := qb.Select(equipmentColumns...).
		From(equipmentTableName).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.collectEquipment(ctx, "GetEquipment", q, args)
}

func (r *repository) InsertEquipment(ctx context.Context, e model.Equipment) (model.Equipment, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	q, args, err := qb.Insert(equipmentTableName).
		Columns(equipmentColumns...).
		Values(e.ID, e.Name, string(e.Type), e.Description, e.IsActive).
		Suffix("returning " + strings.Join(equipmentColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Equipment{}, err
	}
	items, err := r.collectEquipment(ctx, "InsertEquipment", q, args)
	if err != nil {
		return model.Equipment{}, err
	}
	if len(items) != 1 {
		return model.Equipment{}, errs.Store("InsertEquipment", pgx.ErrNoRows)
	}
	return items[0], nil
}

func (r *repository) DeactivateEquipment(ctx context.Context, id string) error {
	q, args, err := qb.Update(equipmentTableName).
		Set("is_active", false).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, q, args...)
	if err != nil {
		return storeErr("DeactivateEquipment", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("equipment", id)
	}
	return nil
}

func (r *repository) collectEquipment(ctx context.Context, op, q string, args []any) ([]model.Equipment, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Equipment])
	if err != nil {
		return nil, storeErr(op, err)
	}
	return items, nil
}
