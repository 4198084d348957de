package order

import (
	"testing"

	"cloud.google.com/go/datastore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/coinshop/lib/mytime"
)

func TestDatastoreProperties(t *testing.T) {

	t.Run("Total amount is stored exactly", func(t *testing.T) {
		// given
		o := Order{SessionID: "cs_test_1", Customer: customer, TotalAmount: decimal.RequireFromString("1234567.89"),
			Currency: "eur", Status: StatusPaid, CreatedAt: mytime.ExampleTime}

		// when
		props, err := o.Save()
		assert.NoError(t, err)
		loaded := Order{}
		err = loaded.Load(props)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "1234567.89", loaded.TotalAmount.String())
		assert.Equal(t, "cs_test_1", loaded.SessionID)
		assert.Equal(t, customer, loaded.Customer)
		assert.Equal(t, StatusPaid, loaded.Status)
	})

	t.Run("Legacy float total is accepted", func(t *testing.T) {
		// given
		props := []datastore.Property{
			{Name: "SessionID", Value: "cs_test_2"},
			{Name: totalAmountProperty, Value: 75.5},
		}

		// when
		loaded := Order{}
		err := loaded.Load(props)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "75.5", loaded.TotalAmount.String())
		assert.Equal(t, "cs_test_2", loaded.SessionID)
	})

	t.Run("Corrupt total is an error", func(t *testing.T) {
		// when
		loaded := Order{}
		err := loaded.Load([]datastore.Property{{Name: totalAmountProperty, Value: "fifty"}})

		// then
		assert.Error(t, err)
	})
}
