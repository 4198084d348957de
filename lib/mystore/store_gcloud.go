package mystore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/datastore"
)

const maxTransactionAttempts = 3

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](c context.Context, projectID string) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
		}, func() {
			client.Close()
		}, nil
}

func transactionFrom(c context.Context) *datastore.Transaction {
	tx, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction)
	if !ok {
		return nil
	}
	return tx
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if transactionFrom(c) != nil {
		return f(c)
	}

	var err error
	for i := 1; i <= maxTransactionAttempts; i++ {
		err = s.runInTransaction(c, f)
		if err != nil {
			if errors.Is(err, datastore.ErrConcurrentTransaction) {
				log.Printf("Concurrent transaction on %s, retrying (%d of %d): %s", s.kind, i, maxTransactionAttempts, err)
				// force retry: this approach requires idempotency of the business logic
				continue
			}
			return err
		}
		return nil
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	t, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error creating transaction: %s", err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, t))
	if err != nil {
		rollbackErr := t.Rollback()
		if rollbackErr != nil {
			log.Printf("Error rolling back transaction on %s: %s", s.kind, rollbackErr)
		}
		return err
	}

	_, err = t.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction on %s: %w", s.kind, err)
	}

	return nil
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	key := datastore.NameKey(s.kind, uid, nil)

	if tx := transactionFrom(c); tx != nil {
		_, err := tx.Put(key, &value)
		if err != nil {
			return fmt.Errorf("error transactionally storing entity %s with uid %s: %s", s.kind, uid, err)
		}
		return nil
	}

	_, err := s.client.Put(c, key, &value)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	key := datastore.NameKey(s.kind, uid, nil)
	value := new(T)

	var err error
	if tx := transactionFrom(c); tx != nil {
		err = tx.Get(key, value)
	} else {
		err = s.client.Get(c, key, value)
	}
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) Delete(c context.Context, uid string) error {
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if tx := transactionFrom(c); tx != nil {
		err = tx.Delete(key)
	} else {
		err = s.client.Delete(c, key)
	}
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	return s.Query(c, nil, "")
}

func (s *gcloudStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	objectsToFetch := []T{}

	q := datastore.NewQuery(s.kind)
	for _, f := range filters {
		q = q.FilterField(f.Field, f.Compare, f.Value)
	}
	if orderByField != "" {
		q = q.Order(orderByField)
	}
	if tx := transactionFrom(c); tx != nil {
		q = q.Transaction(tx)
	}

	_, err := s.client.GetAll(c, q, &objectsToFetch)
	if err != nil {
		return nil, fmt.Errorf("error querying entities %s: %s", s.kind, err)
	}
	return objectsToFetch, nil
}
