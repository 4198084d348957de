package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mystore"
)

// collection is the admin CRUD shared by products, categories and hero slides.
// Entities are keyed on their integer id.
type collection[T any] struct {
	name  string
	store mystore.Store[T]
	getID func(T) int
	setID func(*T, int)
}

func (col collection[T]) list(c context.Context) ([]T, error) {
	all, err := col.store.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error listing %s: %s", col.name, err))
	}
	sort.Slice(all, func(i, j int) bool {
		return col.getID(all[i]) < col.getID(all[j])
	})
	return all, nil
}

func (col collection[T]) get(c context.Context, id int) (T, error) {
	value, found, err := col.store.Get(c, strconv.Itoa(id))
	if err != nil {
		return value, myerrors.NewInternalError(fmt.Errorf("error fetching %s %d: %s", col.name, id, err))
	}
	if !found {
		return value, myerrors.NewNotFoundError(fmt.Errorf("%s %d not found", col.name, id))
	}
	return value, nil
}

// create assigns the next free id. onSave runs inside the same transaction.
func (col collection[T]) create(c context.Context, value T, onSave func(c context.Context, value T) error) (T, error) {
	err := col.store.RunInTransaction(c, func(c context.Context) error {
		all, err := col.store.List(c)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error listing %s: %s", col.name, err))
		}

		nextID := 1
		for _, existing := range all {
			if col.getID(existing) >= nextID {
				nextID = col.getID(existing) + 1
			}
		}
		col.setID(&value, nextID)

		return col.save(c, value, onSave)
	})
	if err != nil {
		return value, err
	}
	return value, nil
}

// update replaces an existing entity. prepare may carry fields over from the stored version.
func (col collection[T]) update(c context.Context, id int, value T, prepare func(existing T, value T) T, onSave func(c context.Context, value T) error) (T, error) {
	col.setID(&value, id)
	err := col.store.RunInTransaction(c, func(c context.Context) error {
		existing, err := col.get(c, id)
		if err != nil {
			return err
		}
		if prepare != nil {
			value = prepare(existing, value)
		}
		return col.save(c, value, onSave)
	})
	if err != nil {
		return value, err
	}
	return value, nil
}

func (col collection[T]) save(c context.Context, value T, onSave func(c context.Context, value T) error) error {
	err := col.store.Put(c, strconv.Itoa(col.getID(value)), value)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing %s %d: %s", col.name, col.getID(value), err))
	}
	if onSave != nil {
		return onSave(c, value)
	}
	return nil
}

func (col collection[T]) delete(c context.Context, id int, onDelete func(c context.Context) error) error {
	return col.store.RunInTransaction(c, func(c context.Context) error {
		_, err := col.get(c, id)
		if err != nil {
			return err
		}

		err = col.store.Delete(c, strconv.Itoa(id))
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error deleting %s %d: %s", col.name, id, err))
		}
		if onDelete != nil {
			return onDelete(c)
		}
		return nil
	})
}
