package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

type Status string

const (
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPaid, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return Status(s), nil
	default:
		return "", myerrors.NewInvalidInputError(fmt.Errorf("unknown order status '%s'", s))
	}
}

// Order is created once per completed payment session and keyed on that session id.
type Order struct {
	SessionID       string                   `json:"sessionId"`
	Customer        checkoutapi.CustomerInfo `json:"customer"`
	Email           string                   `json:"email"`
	TotalAmount     decimal.Decimal          `json:"totalAmount" datastore:"-"`
	Currency        string                   `json:"currency"`
	Status          Status                   `json:"status"`
	PaymentStatus   string                   `json:"paymentStatus"`
	ShippingAddress string                   `json:"shippingAddress" datastore:",noindex"`
	BillingAddress  string                   `json:"billingAddress" datastore:",noindex"`
	CreatedAt       time.Time                `json:"createdAt"`
	LastModified    *time.Time               `json:"lastModified,omitempty"`
}
