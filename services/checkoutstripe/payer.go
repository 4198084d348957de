package checkoutstripe

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

//go:generate mockgen -source=payer.go -package checkoutstripe -destination payer_mock.go Payer
type Payer interface {
	CreateCheckoutSession(c context.Context, params stripe.CheckoutSessionParams) (stripe.CheckoutSession, error)
	ConstructEvent(payload []byte, signature string, secret string) (stripe.Event, error)
}

type stripePayer struct{}

func NewPayer(apiKey string) Payer {
	stripe.Key = apiKey
	return &stripePayer{}
}

func (p *stripePayer) CreateCheckoutSession(c context.Context, params stripe.CheckoutSessionParams) (stripe.CheckoutSession, error) {
	params.Context = c
	s, err := session.New(&params)
	if err != nil {
		return stripe.CheckoutSession{}, err
	}
	return *s, nil
}

func (p *stripePayer) ConstructEvent(payload []byte, signature string, secret string) (stripe.Event, error) {
	// events are parsed into the fields we need, whatever version the endpoint delivers
	return webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
}
