package mystore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

// inMemoryTransaction is shared by every in-memory store used within one RunInTransaction,
// so a rollback undoes the writes of all of them.
type inMemoryTransaction struct {
	touched   map[any]bool
	rollbacks []func()
}

// In-memory transactions are serialized.
var inMemoryTransactionLock sync.Mutex

func inMemoryTransactionFrom(c context.Context) *inMemoryTransaction {
	tx, _ := c.Value(ctxTransactionKey{}).(*inMemoryTransaction)
	return tx
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if inMemoryTransactionFrom(c) != nil {
		return f(c)
	}

	inMemoryTransactionLock.Lock()
	defer inMemoryTransactionLock.Unlock()

	tx := &inMemoryTransaction{touched: map[any]bool{}}
	err := f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		for i := len(tx.rollbacks) - 1; i >= 0; i-- {
			tx.rollbacks[i]()
		}
		return err
	}

	return nil
}

// remember registers a restore of the current items on the first write within a transaction.
// Caller must hold the store lock.
func (s *InMemoryStore[T]) remember(c context.Context) {
	tx := inMemoryTransactionFrom(c)
	if tx == nil || tx.touched[s] {
		return
	}
	tx.touched[s] = true

	snapshot := make(map[string]T, len(s.Items))
	for k, v := range s.Items {
		snapshot[k] = v
	}
	tx.rollbacks = append(tx.rollbacks, func() {
		s.Lock()
		defer s.Unlock()
		s.Items = snapshot
	})
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	s.Lock()
	defer s.Unlock()

	s.remember(c)
	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	s.Lock()
	defer s.Unlock()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Delete(c context.Context, uid string) error {
	s.Lock()
	defer s.Unlock()

	s.remember(c)
	delete(s.Items, uid)

	return nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	s.Lock()
	defer s.Unlock()

	uids := make([]string, 0, len(s.Items))
	for uid := range s.Items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	result := make([]T, 0, len(s.Items))
	for _, uid := range uids {
		result = append(result, s.Items[uid])
	}

	return result, nil
}

func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := []T{}
	for _, item := range all {
		if matches(item, filters) {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		descending := strings.HasPrefix(orderByField, "-")
		field := strings.TrimPrefix(orderByField, "-")
		sort.SliceStable(result, func(i, j int) bool {
			a := reflect.Indirect(reflect.ValueOf(result[i])).FieldByName(field)
			b := reflect.Indirect(reflect.ValueOf(result[j])).FieldByName(field)
			if descending {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	return result, nil
}

func matches(item any, filters []Filter) bool {
	rv := reflect.Indirect(reflect.ValueOf(item))
	for _, f := range filters {
		fv := rv.FieldByName(f.Field)
		if !fv.IsValid() {
			return false
		}
		want := reflect.ValueOf(f.Value)
		if !want.IsValid() || !want.Type().ConvertibleTo(fv.Type()) {
			return false
		}
		if !reflect.DeepEqual(fv.Interface(), want.Convert(fv.Type()).Interface()) {
			return false
		}
	}
	return true
}

func less(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	if t, ok := a.Interface().(time.Time); ok {
		return t.Before(b.Interface().(time.Time))
	}
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	default:
		return false
	}
}
