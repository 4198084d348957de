package order

import (
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/shopspring/decimal"
)

const totalAmountProperty = "TotalAmount"

// Datastore has no decimal type: the total is kept as its exact string representation.
func (o *Order) Save() ([]datastore.Property, error) {
	props, err := datastore.SaveStruct(o)
	if err != nil {
		return nil, err
	}
	return append(props, datastore.Property{
		Name:    totalAmountProperty,
		Value:   o.TotalAmount.String(),
		NoIndex: true,
	}), nil
}

func (o *Order) Load(props []datastore.Property) error {
	rest := make([]datastore.Property, 0, len(props))
	for _, p := range props {
		if p.Name != totalAmountProperty {
			rest = append(rest, p)
			continue
		}
		switch v := p.Value.(type) {
		case string:
			amount, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("error parsing total amount '%s': %s", v, err)
			}
			o.TotalAmount = amount
		case float64:
			// orders written before the total became exact
			o.TotalAmount = decimal.NewFromFloat(v)
		}
	}
	return datastore.LoadStruct(o, rest)
}
