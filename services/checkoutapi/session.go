package checkoutapi

import (
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"categoryName,omitempty"`
	Quantity     int             `json:"quantity"`
}

type SessionRequest struct {
	Items        []LineItem   `json:"items"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url,omitempty"`
}
