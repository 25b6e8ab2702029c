package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

var accountColumns = []string{"id", "email", "display_name", "role", "is_blocked", "created_at"}

// EnsureAccount inserts a on first contact and otherwise returns the stored row untouched.
func (r *repository) EnsureAccount(ctx context.Context, a model.Account) (model.Account, error) {
	q, args, err := qb.Insert(accountTableName).
		Columns(accountColumns...).
		Values(a.ID, a.Email, a.DisplayName, string(a.Role), a.IsBlocked, a.CreatedAt.UTC()).
		Suffix("on conflict (id) do nothing returning " + strings.Join(accountColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Account{}, err
	}
	acc, err := r.collectAccount(ctx, "EnsureAccount", a.ID, q, args)
	if errors.Is(err, errs.ErrNotFound) {
		return r.GetAccount(ctx, a.ID)
	}
	return acc, err
}

func (r *repository) GetAccount(ctx context.Context, id string) (model.Account, error) {
	q, args, err := qb.Select(accountColumns...).
		From(accountTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Account{}, err
	}
	return r.collectAccount(ctx, "GetAccount", id, q, args)
}

func (r *repository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	q, args, err := qb.Select(accountColumns...).
		From(accountTableName).
		OrderBy("email").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr("ListAccounts", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Account])
	if err != nil {
		return nil, storeErr("ListAccounts", err)
	}
	return items, nil
}

func (r *repository) UpdateAccountRole(ctx context.Context, id string, role model.Role) (model.Account, error) {
	return r.updateAccount(ctx, "UpdateAccountRole", id, "role", string(role))
}

func (r *repository) SetAccountBlocked(ctx context.Context, id string, blocked bool) (model.Account, error) {
	return r.updateAccount(ctx, "SetAccountBlocked", id, "is_blocked", blocked)
}

func (r *repository) updateAccount(ctx context.Context, op, id, column string, value any) (model.Account, error) {
	q, args, err := qb.Update(accountTableName).
		Set(column, value).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + strings.Join(accountColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Account{}, err
	}
	return r.collectAccount(ctx, op, id, q, args)
}

func (r *repository) collectAccount(ctx context.Context, op, id, q string, args []any) (model.Account, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return model.Account{}, storeErr(op, err)
	}
	acc, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, errs.NotFound("account", id)
		}
		return model.Account{}, storeErr(op, err)
	}
	return acc, nil
}
