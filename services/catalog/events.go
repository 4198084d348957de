package catalog

import (
	"strconv"
	"time"
)

const (
	TopicName          = "catalog"
	productChangedName = TopicName + ".productChanged"
	productDeletedName = TopicName + ".productDeleted"
)

// ProductChanged and ProductDeleted carry the moment of change: a product that returns to an
// earlier state is still a new event.
type ProductChanged struct {
	ProductID     int
	Name          string
	Price         float64
	StockQuantity int
	IsActive      bool
	ChangedAt     time.Time
}

func (e ProductChanged) GetEventTypeName() string {
	return productChangedName
}

func (e ProductChanged) GetAggregateName() string {
	return strconv.Itoa(e.ProductID)
}

type ProductDeleted struct {
	ProductID int
	DeletedAt time.Time
}

func (e ProductDeleted) GetEventTypeName() string {
	return productDeletedName
}

func (e ProductDeleted) GetAggregateName() string {
	return strconv.Itoa(e.ProductID)
}
