package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS documents (
	kind    TEXT  NOT NULL,
	uid     TEXT  NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (kind, uid)
)`

var (
	validFieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	validCompare   = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
)

type querier interface {
	Exec(c context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(c context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(c context.Context, sql string, args ...any) pgx.Row
}

// ConnectPostgres opens a pool and makes sure the document table exists.
func ConnectPostgres(c context.Context, databaseURL string) (*pgxpool.Pool, func(), error) {
	pool, err := pgxpool.New(c, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to postgres: %s", err)
	}

	_, err = pool.Exec(c, createDocumentsTable)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("error creating documents table: %s", err)
	}

	return pool, pool.Close, nil
}

// postgresStore keeps every kind as json documents in a single table.
// All stores share the pool, so a transaction spans kinds.
type postgresStore[T any] struct {
	pool *pgxpool.Pool
	kind string
}

func newPostgresStore[T any](c context.Context, pool *pgxpool.Pool) (*postgresStore[T], func(), error) {
	return &postgresStore[T]{
		pool: pool,
		kind: kindOf[T](),
	}, func() {}, nil
}

func (s *postgresStore[T]) db(c context.Context) querier {
	tx, ok := c.Value(ctxTransactionKey{}).(pgx.Tx)
	if ok {
		return tx
	}
	return s.pool
}

func (s *postgresStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if _, ok := c.Value(ctxTransactionKey{}).(pgx.Tx); ok {
		return f(c)
	}

	return pgx.BeginFunc(c, s.pool, func(tx pgx.Tx) error {
		return f(context.WithValue(c, ctxTransactionKey{}, tx))
	})
}

func (s *postgresStore[T]) Put(c context.Context, uid string, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	_, err = s.db(c).Exec(c,
		`INSERT INTO documents (kind, uid, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (kind, uid) DO UPDATE SET payload = EXCLUDED.payload`,
		s.kind, uid, payload)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *postgresStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T
	var payload []byte

	err := s.db(c).QueryRow(c, `SELECT payload FROM documents WHERE kind = $1 AND uid = $2`, s.kind, uid).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal(payload, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *postgresStore[T]) Delete(c context.Context, uid string) error {
	_, err := s.db(c).Exec(c, `DELETE FROM documents WHERE kind = $1 AND uid = $2`, s.kind, uid)
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *postgresStore[T]) List(c context.Context) ([]T, error) {
	return s.Query(c, nil, "")
}

func (s *postgresStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	sql, args, err := s.composeQuery(filters, orderByField)
	if err != nil {
		return nil, err
	}

	rows, err := s.db(c).Query(c, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entities %s: %s", s.kind, err)
	}

	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("error reading entities %s: %s", s.kind, err)
	}

	result := make([]T, 0, len(payloads))
	for _, payload := range payloads {
		var value T
		err = json.Unmarshal(payload, &value)
		if err != nil {
			return nil, fmt.Errorf("error unmarshalling entity %s: %s", s.kind, err)
		}
		result = append(result, value)
	}

	return result, nil
}

func (s *postgresStore[T]) composeQuery(filters []Filter, orderByField string) (string, []any, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT payload FROM documents WHERE kind = $1`)
	args := []any{s.kind}

	for _, f := range filters {
		if !validFieldName.MatchString(f.Field) || !validCompare[f.Compare] {
			return "", nil, fmt.Errorf("unsupported filter %s %s on %s", f.Field, f.Compare, s.kind)
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("error marshalling filter value for %s on %s: %s", f.Field, s.kind, err)
		}
		// jsonb comparison keeps numbers numeric
		args = append(args, string(value))
		fmt.Fprintf(&sb, ` AND payload->'%s' %s $%d::jsonb`, jsonName[T](f.Field), f.Compare, len(args))
	}

	if orderByField != "" {
		direction := "ASC"
		if strings.HasPrefix(orderByField, "-") {
			direction = "DESC"
			orderByField = strings.TrimPrefix(orderByField, "-")
		}
		if !validFieldName.MatchString(orderByField) {
			return "", nil, fmt.Errorf("unsupported order %s on %s", orderByField, s.kind)
		}
		fmt.Fprintf(&sb, ` ORDER BY payload->'%s' %s`, jsonName[T](orderByField), direction)
	} else {
		sb.WriteString(` ORDER BY uid`)
	}

	return sb.String(), args, nil
}

// jsonName maps a struct field to the key it is stored under in the payload.
func jsonName[T any](field string) string {
	t := reflect.TypeOf(new(T)).Elem()
	if t.Kind() != reflect.Struct {
		return field
	}
	sf, found := t.FieldByName(field)
	if !found {
		return field
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}
