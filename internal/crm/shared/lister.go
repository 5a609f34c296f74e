package shared

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx used by repositories.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ScanFunc reads one row.
type ScanFunc[T any] func(pgx.Row) (T, error)

// List runs the count and page queries for state concurrently. db must be safe
// for concurrent use, which a pool is and a transaction is not.
func List[T any](ctx context.Context, db Querier, spec ListSpec, state listview.FilterState, scan ScanFunc[T]) ([]T, int, error) {
	q, err := spec.Build(state)
	if err != nil {
		return nil, 0, err
	}

	var (
		total int
		items []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.QueryRow(gctx, q.Count, q.Args...).Scan(&total); err != nil {
			return fmt.Errorf("count %s: %w", spec.Table, err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := db.Query(gctx, q.Page, q.PageArgs...)
		if err != nil {
			return fmt.Errorf("list %s: %w", spec.Table, err)
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("scan %s: %w", spec.Table, err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Lister collapses identical concurrent list requests into one pair of
// queries.
type Lister[T any] struct {
	db      Querier
	spec    ListSpec
	scan    ScanFunc[T]
	timeout time.Duration
	group   singleflight.Group
}

// NewLister constructs a Lister for spec.
func NewLister[T any](db Querier, spec ListSpec, scan ScanFunc[T]) *Lister[T] {
	return &Lister[T]{db: db, spec: spec, scan: scan, timeout: 10 * time.Second}
}

// Spec returns the list spec.
func (l *Lister[T]) Spec() ListSpec {
	return l.spec
}

type listResult[T any] struct {
	items []T
	total int
}

// List returns one page for state and the total row count. The shared query
// runs detached from any single caller so one caller giving up does not fail
// the others.
func (l *Lister[T]) List(ctx context.Context, state listview.FilterState) ([]T, int, error) {
	key := listview.BuildQuery(state).Encode()
	ch := l.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		items, total, err := List(runCtx, l.db, l.spec, state, l.scan)
		return listResult[T]{items: items, total: total}, err
	})
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, 0, res.Err
		}
		out := res.Val.(listResult[T])
		return slices.Clone(out.items), out.total, nil
	}
}

// MapError converts pgx errors into the httpx sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", httpx.ErrValidation, pgErr.Detail)
		}
	}
	return err
}
