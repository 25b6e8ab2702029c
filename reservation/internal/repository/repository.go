package repository

import (
	"context"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	// RunInTx runs fn in one transaction holding an advisory lock per key.
	RunInTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error

	FindBlockingReservations(ctx context.Context, equipmentIDs []string) ([]model.Reservation, error)
	InsertReservation(ctx context.Context, r model.Reservation) (model.Reservation, error)
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, from, to model.Status) (model.Reservation, error)
	CountByStatus(ctx context.Context, filter model.ReservationFilter) (model.Stats, error)
	CompleteExpired(ctx context.Context, now time.Time) ([]model.Reservation, error)

	ListActiveEquipment(ctx context.Context) ([]model.Equipment, error)
	GetEquipment(ctx context.Context, ids []string) ([]model.Equipment, error)
	InsertEquipment(ctx context.Context, e model.Equipment) (model.Equipment, error)
	DeactivateEquipment(ctx context.Context, id string) error

	EnsureAccount(ctx context.Context, a model.Account) (model.Account, error)
	GetAccount(ctx context.Context, id string) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccountRole(ctx context.Context, id string, role model.Role) (model.Account, error)
	SetAccountBlocked(ctx context.Context, id string, blocked bool) (model.Account, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	reservationTableName = `reservations`
	equipmentTableName   = `equipment`
	accountTableName     = `accounts`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type txKey struct{}

// conn returns the transaction bound to ctx, or the pool.
func (r *repository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.db
}

func (r *repository) RunInTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return errors.New("nested transaction")
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.log.Warn("rollback", zap.Error(err))
		}
	}()

	for _, key := range lockOrder(lockKeys) {
		if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return storeErr("advisory lock", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit tx", err)
	}
	return nil
}

// lockOrder sorts and de-duplicates keys so concurrent transactions take
// the same locks in the same order.
func lockOrder(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}

// storeErr classifies driver failures; constraint violations are caller mistakes.
func storeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation, pgerrcode.NotNullViolation:
			return errs.Validation("%s: %s", op, pgErr.Message)
		case pgerrcode.ForeignKeyViolation:
			return errs.Validation("%s: unknown reference", op)
		}
	}
	return errs.Store(op, err)
}
