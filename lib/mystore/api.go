package mystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ctxTransactionKey struct{}

type Filter struct {
	Field   string
	Compare string
	Value   any
}

//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	Delete(c context.Context, uid string) error
	List(c context.Context) ([]T, error)
	// Query supports equality filters; prefix orderByField with "-" for descending order.
	Query(c context.Context, filters []Filter, orderByField string) ([]T, error)
}

// Options selects the backend: postgres when a pool is given, datastore when a project is given,
// in-memory otherwise.
type Options struct {
	ProjectID string
	Pool      *pgxpool.Pool
}

func New[T any](c context.Context, opts Options) (Store[T], func(), error) {
	if opts.Pool != nil {
		return newPostgresStore[T](c, opts.Pool)
	}
	if opts.ProjectID != "" {
		return newGcloudStore[T](c, opts.ProjectID)
	}
	return NewInMemoryStore[T](c)
}

func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}
	return kind
}
