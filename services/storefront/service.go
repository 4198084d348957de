package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/services/cart"
	"github.com/MarcGrol/coinshop/services/catalog"
	"github.com/MarcGrol/coinshop/services/checkout"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

//go:generate mockgen -source=service.go -package storefront -destination collaborators_mock.go ProductLookup,PaymentSessionCreator
type ProductLookup interface {
	Lookup(c context.Context, productID int) (catalog.ProductDetails, error)
}

type PaymentSessionCreator interface {
	CreateSession(c context.Context, r *http.Request, req checkoutapi.SessionRequest) (checkoutapi.SessionResponse, error)
}

const maxConcurrentLookups = 8

type service struct {
	logger   mylog.Logger
	products ProductLookup
	payments PaymentSessionCreator
	inflight singleflight.Group
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, products ProductLookup, payments PaymentSessionCreator) *service {
	return &service{
		logger:   logger,
		products: products,
		payments: payments,
	}
}

// withCart applies a mutation to the visitors cart; the listener keeps the visitor state in sync.
func (s *service) withCart(vs *visitorState, mutate func(store *cart.Store)) cart.State {
	store := vs.cart()
	unsubscribe := store.Subscribe(func(state cart.State) {
		vs.Items = state.Items
	})
	defer unsubscribe()

	mutate(store)

	return store.State()
}

// hydrate fills the cart with the current catalog details of the remembered lines.
// Products that are no longer sold drop out of the cart.
func (s *service) hydrate(c context.Context, vs *visitorState) error {
	found := make([]*cart.Item, len(vs.Lines))

	g, gc := errgroup.WithContext(c)
	g.SetLimit(maxConcurrentLookups)
	for i, line := range vs.Lines {
		i, line := i, line
		g.Go(func() error {
			item, err := s.lookupItem(gc, line.ProductID)
			if err != nil {
				if myerrors.GetHTTPStatus(err) == http.StatusNotFound {
					s.logger.Log(c, vs.VisitorID, mylog.SeverityInfo, "Product %d left the cart of visitor %s: %s", line.ProductID, vs.VisitorID, err)
					return nil
				}
				return err
			}
			item.Quantity = line.Quantity
			found[i] = &item
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error looking up cart of visitor %s: %s", vs.VisitorID, err))
	}

	vs.Items = make([]cart.Item, 0, len(found))
	for _, item := range found {
		if item != nil {
			vs.Items = append(vs.Items, *item)
		}
	}
	return nil
}

func (s *service) lookupItem(c context.Context, productID int) (cart.Item, error) {
	details, err := s.products.Lookup(c, productID)
	if err != nil {
		return cart.Item{}, err
	}

	item := cart.Item{
		ID:              details.ID,
		Name:            details.Name,
		Price:           decimal.NewFromFloat(details.Price),
		PrimaryImageURL: details.PrimaryImageURL,
	}
	if details.Category != nil {
		item.CategoryName = details.Category.Name
	}
	return item, nil
}

// addItem adds one unit of an active product. Stock is not re-validated.
func (s *service) addItem(c context.Context, vs *visitorState, productID int) (cart.State, error) {
	item, err := s.lookupItem(c, productID)
	if err != nil {
		return cart.State{}, err
	}

	return s.withCart(vs, func(store *cart.Store) {
		store.AddItem(item)
	}), nil
}

func (s *service) removeItem(vs *visitorState, productID int) cart.State {
	return s.withCart(vs, func(store *cart.Store) {
		store.RemoveItem(productID)
	})
}

func (s *service) updateQuantity(vs *visitorState, productID int, quantity int) cart.State {
	return s.withCart(vs, func(store *cart.Store) {
		store.UpdateQuantity(productID, quantity)
	})
}

func (s *service) clearCart(vs *visitorState) cart.State {
	return s.withCart(vs, func(store *cart.Store) {
		store.Clear()
	})
}

func (s *service) view(vs *visitorState) CheckoutView {
	return newCheckoutView(vs.cart().State(), vs.controller())
}

func (s *service) goTo(vs *visitorState, step checkout.Step) CheckoutView {
	ctrl := vs.controller()
	ctrl.GoTo(step)
	vs.setController(ctrl)

	return s.view(vs)
}

func (s *service) completeCart(vs *visitorState) (CheckoutView, error) {
	if vs.cart().IsEmpty() {
		return CheckoutView{}, myerrors.NewInvalidInputError(fmt.Errorf("cart is empty"))
	}

	ctrl := vs.controller()
	ctrl.CompleteCart()
	vs.setController(ctrl)

	return s.view(vs), nil
}

// completeContact stores the entered details also when they are rejected.
func (s *service) completeContact(vs *visitorState, info checkoutapi.CustomerInfo) (CheckoutView, error) {
	ctrl := vs.controller()
	err := ctrl.CompleteContact(info)
	vs.setController(ctrl)
	if err != nil {
		return CheckoutView{}, err
	}

	return s.view(vs), nil
}

// pay leaves the visitor state untouched: the cart is only cleared once the provider redirects back.
func (s *service) pay(c context.Context, r *http.Request, vs *visitorState) (checkoutapi.SessionResponse, error) {
	ctrl := vs.controller()
	if !ctrl.CanPay() {
		return checkoutapi.SessionResponse{}, myerrors.NewInvalidInputError(fmt.Errorf("contact details are not completed"))
	}
	store := vs.cart()
	if store.IsEmpty() {
		return checkoutapi.SessionResponse{}, myerrors.NewInvalidInputError(fmt.Errorf("cart is empty"))
	}

	req := checkoutapi.SessionRequest{
		Items:        lineItems(store.Items()),
		CustomerInfo: ctrl.Customer,
	}

	// double clicks from the same visitor share one session
	result, err, shared := s.inflight.Do(vs.VisitorID, func() (interface{}, error) {
		return s.payments.CreateSession(c, r, req)
	})
	if err != nil {
		return checkoutapi.SessionResponse{}, err
	}
	if shared {
		s.logger.Log(c, vs.VisitorID, mylog.SeverityInfo, "Visitor %s joined in-flight payment session", vs.VisitorID)
	}

	return result.(checkoutapi.SessionResponse), nil
}

func (s *service) paymentSucceeded(c context.Context, vs *visitorState, sessionID string) {
	s.withCart(vs, func(store *cart.Store) {
		store.Clear()
	})
	ctrl := vs.controller()
	ctrl.Reset()
	vs.setController(ctrl)

	s.logger.Log(c, sessionID, mylog.SeverityInfo, "Visitor %s returned from successful payment %s", vs.VisitorID, sessionID)
}

func (s *service) paymentCancelled(c context.Context, vs *visitorState) {
	s.logger.Log(c, vs.VisitorID, mylog.SeverityInfo, "Visitor %s cancelled payment", vs.VisitorID)
}
