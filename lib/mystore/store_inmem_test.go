package mystore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type Coin struct {
	UID       string
	Name      string
	Metal     string
	Active    bool
	CreatedAt time.Time
}

var (
	now        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	krugerrand = Coin{UID: "1", Name: "Krugerrand", Metal: "gold", Active: true, CreatedAt: now}
	morgan     = Coin{UID: "2", Name: "Morgan dollar", Metal: "silver", Active: true, CreatedAt: now.Add(time.Hour)}
	sovereign  = Coin{UID: "3", Name: "Sovereign", Metal: "gold", Active: false, CreatedAt: now.Add(2 * time.Hour)}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := New[Coin](c, Options{})
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := store.Get(c, krugerrand.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		assert.NoError(t, store.Put(c, krugerrand.UID, krugerrand))
		assert.NoError(t, store.Put(c, morgan.UID, morgan))
		assert.NoError(t, store.Put(c, sovereign.UID, sovereign))
	})

	t.Run("Get found", func(t *testing.T) {
		coin, found, err := store.Get(c, krugerrand.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, krugerrand, coin)
	})

	t.Run("List", func(t *testing.T) {
		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Coin{krugerrand, morgan, sovereign}, all)
	})

	t.Run("Query with filter", func(t *testing.T) {
		gold, err := store.Query(c, []Filter{{Field: "Metal", Compare: "=", Value: "gold"}}, "-CreatedAt")
		assert.NoError(t, err)
		assert.Equal(t, []Coin{sovereign, krugerrand}, gold)
	})

	t.Run("Query with multiple filters", func(t *testing.T) {
		activeGold, err := store.Query(c, []Filter{
			{Field: "Metal", Compare: "=", Value: "gold"},
			{Field: "Active", Compare: "=", Value: true},
		}, "Name")
		assert.NoError(t, err)
		assert.Equal(t, []Coin{krugerrand}, activeGold)
	})

	t.Run("Transaction rollback", func(t *testing.T) {
		err := store.RunInTransaction(c, func(c context.Context) error {
			err := store.Delete(c, morgan.UID)
			assert.NoError(t, err)
			return fmt.Errorf("abort")
		})
		assert.Error(t, err)

		_, found, _ := store.Get(c, morgan.UID)
		assert.True(t, found)
	})

	t.Run("Transaction commit", func(t *testing.T) {
		err := store.RunInTransaction(c, func(c context.Context) error {
			return store.Delete(c, morgan.UID)
		})
		assert.NoError(t, err)

		_, found, _ := store.Get(c, morgan.UID)
		assert.False(t, found)
	})
}

type Ledger struct {
	UID     string
	CoinUID string
}

func TestTransactionSpansStores(t *testing.T) {
	c := context.TODO()

	t.Run("Rollback undoes writes to every store", func(t *testing.T) {
		// setup
		coins, _, _ := NewInMemoryStore[Coin](c)
		ledgers, _, _ := NewInMemoryStore[Ledger](c)

		// given
		assert.NoError(t, coins.Put(c, morgan.UID, morgan))

		// when
		err := coins.RunInTransaction(c, func(c context.Context) error {
			err := coins.Put(c, krugerrand.UID, krugerrand)
			assert.NoError(t, err)
			err = coins.Delete(c, morgan.UID)
			assert.NoError(t, err)
			err = ledgers.Put(c, "l1", Ledger{UID: "l1", CoinUID: krugerrand.UID})
			assert.NoError(t, err)
			return fmt.Errorf("abort")
		})

		// then
		assert.Error(t, err)
		_, found, _ := coins.Get(c, krugerrand.UID)
		assert.False(t, found)
		_, found, _ = coins.Get(c, morgan.UID)
		assert.True(t, found)
		_, found, _ = ledgers.Get(c, "l1")
		assert.False(t, found)
	})

	t.Run("Commit keeps writes to every store", func(t *testing.T) {
		// setup
		coins, _, _ := NewInMemoryStore[Coin](c)
		ledgers, _, _ := NewInMemoryStore[Ledger](c)

		// when
		err := ledgers.RunInTransaction(c, func(c context.Context) error {
			err := coins.RunInTransaction(c, func(c context.Context) error {
				return coins.Put(c, sovereign.UID, sovereign)
			})
			if err != nil {
				return err
			}
			return ledgers.Put(c, "l2", Ledger{UID: "l2", CoinUID: sovereign.UID})
		})

		// then
		assert.NoError(t, err)
		_, found, _ := coins.Get(c, sovereign.UID)
		assert.True(t, found)
		_, found, _ = ledgers.Get(c, "l2")
		assert.True(t, found)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "Coin", kindOf[Coin]())
}
