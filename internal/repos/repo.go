package repos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"movielog-server/internal/model"
)

// ErrNotFound is returned when a viewing id does not exist.
var ErrNotFound = errors.New("viewing not found")

// DB is the subset of *pgxpool.Pool the repositories use. Each call acquires
// and releases its own pooled connection.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

var _ DB = (*pgxpool.Pool)(nil)

type Repository struct {
	db DB

	Viewings *ViewingsRepo
}

func New(db DB) *Repository {
	r := &Repository{db: db}
	r.Viewings = &ViewingsRepo{db: db}
	return r
}

func (r *Repository) Ping(ctx context.Context) error { return r.db.Ping(ctx) }

// Forwarders so *Repository satisfies the route-level store interface.
func (r *Repository) ListBetween(ctx context.Context, start, end model.Date) ([]model.Viewing, error) {
	return r.Viewings.ListBetween(ctx, start, end)
}
func (r *Repository) FindByReference(ctx context.Context, ref string) ([]model.PriorViewing, error) {
	return r.Viewings.FindByReference(ctx, ref)
}
func (r *Repository) Get(ctx context.Context, id int64) (model.Viewing, error) {
	return r.Viewings.Get(ctx, id)
}
func (r *Repository) Insert(ctx context.Context, v model.Viewing) (int64, error) {
	return r.Viewings.Insert(ctx, v)
}
func (r *Repository) Update(ctx context.Context, id int64, v model.Viewing) error {
	return r.Viewings.Update(ctx, id, v)
}
