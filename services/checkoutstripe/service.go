package checkoutstripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mymoney"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
	"github.com/MarcGrol/coinshop/services/checkoutevents"
	"github.com/MarcGrol/coinshop/services/order"
)

const (
	providerName                 = "stripe"
	eventCheckoutSessionDone     = "checkout.session.completed"
	maxMetadataValueLength       = 500
	checkoutSessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"
)

//go:generate mockgen -source=service.go -package checkoutstripe -destination ordercreator_mock.go OrderCreator
type OrderCreator interface {
	Create(c context.Context, o order.Order) (order.Order, bool, error)
}

// customerMetadata stores every contact field under its own metadata key, so a long value
// is cut on its own and never damages the others.
var customerMetadata = []struct {
	key   string
	field func(ci *checkoutapi.CustomerInfo) *string
}{
	{key: "customer_first_name", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.FirstName }},
	{key: "customer_last_name", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.LastName }},
	{key: "customer_email", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.Email }},
	{key: "customer_phone", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.Phone }},
	{key: "customer_address", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.Address }},
	{key: "customer_city", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.City }},
	{key: "customer_state", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.State }},
	{key: "customer_postcode", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.Postcode }},
	{key: "notes", field: func(ci *checkoutapi.CustomerInfo) *string { return &ci.Notes }},
}

type Config struct {
	BaseURL       string
	Currency      string
	WebhookSecret string
}

type service struct {
	cfg       Config
	logger    mylog.Logger
	payer     Payer
	orders    OrderCreator
	publisher mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cfg Config, logger mylog.Logger, payer Payer, orders OrderCreator, publisher mypublisher.Publisher) *service {
	return &service{
		cfg:       cfg,
		logger:    logger,
		payer:     payer,
		orders:    orders,
		publisher: publisher,
	}
}

// createSession asks the payment provider for a hosted checkout page for the given cart.
func (s *service) createSession(c context.Context, baseURL string, req checkoutapi.SessionRequest) (checkoutapi.SessionResponse, error) {
	params, err := s.composeSessionParams(c, baseURL, req)
	if err != nil {
		return checkoutapi.SessionResponse{}, err
	}

	session, err := s.payer.CreateCheckoutSession(c, params)
	if err != nil {
		return checkoutapi.SessionResponse{}, myerrors.NewInternalError(fmt.Errorf("error creating checkout session: %s", err))
	}

	s.logger.Log(c, session.ID, mylog.SeverityInfo, "Started checkout session %s for %s", session.ID, req.CustomerInfo.Email)

	itemCount := 0
	for _, item := range req.Items {
		itemCount += item.Quantity
	}
	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
		ProviderName:  providerName,
		SessionID:     session.ID,
		AmountInCents: session.AmountTotal,
		Currency:      string(session.Currency),
		ItemCount:     itemCount,
		CustomerEmail: req.CustomerInfo.Email,
	})
	if err != nil {
		// the session exists at the provider, so the visitor can still pay
		s.logger.Log(c, session.ID, mylog.SeverityError, "Error publishing checkout start of %s: %s", session.ID, err)
	}

	return checkoutapi.SessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (s *service) composeSessionParams(c context.Context, baseURL string, req checkoutapi.SessionRequest) (stripe.CheckoutSessionParams, error) {
	if len(req.Items) == 0 {
		return stripe.CheckoutSessionParams{}, myerrors.NewInvalidInputError(fmt.Errorf("cart is empty"))
	}
	if req.CustomerInfo.Email == "" {
		return stripe.CheckoutSessionParams{}, myerrors.NewInvalidInputError(fmt.Errorf("customer email is required"))
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return stripe.CheckoutSessionParams{}, myerrors.NewInvalidInputError(fmt.Errorf("invalid quantity %d for %s", item.Quantity, item.Name))
		}
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.CategoryName != "" {
			productData.Description = stripe.String(item.CategoryName)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.cfg.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(mymoney.ToMinorUnits(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	info := req.CustomerInfo
	params := stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		CustomerEmail:      stripe.String(info.Email),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(baseURL + "/checkout/success?session_id=" + checkoutSessionIDPlaceholder),
		CancelURL:          stripe.String(baseURL + "/checkout/cancel"),
	}
	for _, m := range customerMetadata {
		value := *m.field(&info)
		if value == "" {
			continue
		}
		truncated, cut := truncate(value)
		if cut {
			s.logger.Log(c, info.Email, mylog.SeverityWarn, "Customer %s of %s exceeds %d characters and is truncated", m.key, info.Email, maxMetadataValueLength)
		}
		params.AddMetadata(m.key, truncated)
	}

	return params, nil
}

// truncate cuts on a character boundary.
func truncate(value string) (string, bool) {
	runes := []rune(value)
	if len(runes) <= maxMetadataValueLength {
		return value, false
	}
	return string(runes[:maxMetadataValueLength]), true
}

// handleWebhook only trusts events that carry a valid signature for the configured secret.
func (s *service) handleWebhook(c context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("webhook secret is not configured"))
	}
	if signature == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing stripe signature"))
	}

	event, err := s.payer.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("webhook signature verification failed: %s", err))
	}

	s.logger.Log(c, event.ID, mylog.SeverityInfo, "Webhook: received event %s (%s)", event.ID, event.Type)

	if string(event.Type) != eventCheckoutSessionDone {
		return nil
	}

	session := stripe.CheckoutSession{}
	err = json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error parsing checkout session of event %s: %s", event.ID, err))
	}

	return s.sessionCompleted(c, session)
}

func (s *service) sessionCompleted(c context.Context, session stripe.CheckoutSession) error {
	o := s.orderFromSession(c, session)

	_, created, err := s.orders.Create(c, o)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error creating order for session %s: %s", session.ID, err))
	}
	if !created {
		return nil
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
		ProviderName:  providerName,
		SessionID:     session.ID,
		AmountInCents: session.AmountTotal,
		Currency:      string(session.Currency),
		PaymentStatus: string(session.PaymentStatus),
		CustomerEmail: o.Email,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	return nil
}

func (s *service) orderFromSession(c context.Context, session stripe.CheckoutSession) order.Order {
	customer := checkoutapi.CustomerInfo{}
	found := 0
	for _, m := range customerMetadata {
		if value, ok := session.Metadata[m.key]; ok {
			*m.field(&customer) = value
			found++
		}
	}
	if found == 0 {
		s.logger.Log(c, session.ID, mylog.SeverityWarn, "Session %s carries no customer details in its metadata", session.ID)
	}

	email := customer.Email
	billingAddress := ""
	if session.CustomerDetails != nil {
		if session.CustomerDetails.Email != "" {
			email = session.CustomerDetails.Email
		}
		billingAddress = formatAddress(session.CustomerDetails.Address)
	}
	if email == "" {
		email = session.CustomerEmail
	}

	shippingAddress := ""
	if customer.Address != "" {
		shippingAddress = customer.FullAddress()
	}

	return order.Order{
		SessionID:       session.ID,
		Customer:        customer,
		Email:           email,
		TotalAmount:     mymoney.FromMinorUnits(session.AmountTotal),
		Currency:        string(session.Currency),
		PaymentStatus:   string(session.PaymentStatus),
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
	}
}

func formatAddress(a *stripe.Address) string {
	if a == nil {
		return ""
	}
	parts := []string{}
	for _, part := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
