package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/myuuid"
	"github.com/MarcGrol/coinshop/services/checkout"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

const (
	sessionName     = "coinshop"
	sessionStateKey = "state"
)

type webService struct {
	logger       mylog.Logger
	sessionStore sessions.Store
	uuider       myuuid.UUIDer
	service      *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(sessionStore sessions.Store, uuider myuuid.UUIDer, products ProductLookup, payments PaymentSessionCreator) *webService {
	logger := mylog.New("storefront")
	return &webService{
		logger:       logger,
		sessionStore: sessionStore,
		uuider:       uuider,
		service:      newService(logger, products, payments),
	}
}

// NewCookieStore keeps the visitor state in a signed cookie only.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/cart", s.handle(s.getCart)).Methods("GET")
	router.HandleFunc("/api/cart", s.handle(s.clearCart)).Methods("DELETE")
	router.HandleFunc("/api/cart/items", s.handle(s.addItem)).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}", s.handle(s.updateQuantity)).Methods("PUT")
	router.HandleFunc("/api/cart/items/{id}", s.handle(s.removeItem)).Methods("DELETE")

	router.HandleFunc("/api/checkout", s.handle(s.getCheckout)).Methods("GET")
	router.HandleFunc("/api/checkout/steps/{step}", s.handle(s.goToStep)).Methods("POST")
	router.HandleFunc("/api/checkout/cart/complete", s.handle(s.completeCart)).Methods("POST")
	router.HandleFunc("/api/checkout/contact", s.handle(s.completeContact)).Methods("POST")
	router.HandleFunc("/api/checkout/pay", s.handle(s.pay)).Methods("POST")

	router.HandleFunc("/checkout/success", s.handle(s.paymentSucceeded)).Methods("GET")
	router.HandleFunc("/checkout/cancel", s.handle(s.paymentCancelled)).Methods("GET")
}

type visitorAction func(c context.Context, r *http.Request, vs *visitorState) (interface{}, error)

// handle loads the visitor state from the session and always stores it again, so
// rejected contact details stay filled in.
func (s *webService) handle(action visitorAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, vs := s.loadState(c, r)

		// the cookie is left as it is, so the cart is back once the catalog recovers
		err := s.service.hydrate(c, &vs)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		resp, actionErr := action(c, r, &vs)

		err = s.saveState(w, r, session, vs)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		if actionErr != nil {
			errorWriter.WriteError(c, w, 2, actionErr)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) loadState(c context.Context, r *http.Request) (*sessions.Session, visitorState) {
	vs := visitorState{}

	session, err := s.sessionStore.Get(r, sessionName)
	if err != nil {
		// an unreadable cookie just starts a new visit
		s.logger.Log(c, "", mylog.SeverityWarn, "Error decoding session cookie: %s", err)
	}

	if raw, ok := session.Values[sessionStateKey].(string); ok {
		err = json.Unmarshal([]byte(raw), &vs)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Error parsing visitor state: %s", err)
			vs = visitorState{}
		}
	}
	if vs.VisitorID == "" {
		vs.VisitorID = s.uuider.Create()
	}

	return session, vs
}

func (s *webService) saveState(w http.ResponseWriter, r *http.Request, session *sessions.Session, vs visitorState) error {
	vs.rememberLines()
	raw, err := json.Marshal(vs)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error marshalling visitor state: %s", err))
	}
	session.Values[sessionStateKey] = string(raw)

	err = session.Save(r, w)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error saving session: %s", err))
	}
	return nil
}

func (s *webService) getCart(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	return vs.cart().State(), nil
}

func (s *webService) addItem(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	req := AddItemRequest{}
	err := myhttp.DecodeJSON(r, &req)
	if err != nil {
		return nil, err
	}
	return s.service.addItem(c, vs, req.ProductID)
}

func (s *webService) updateQuantity(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	productID, err := productIDFromRequest(r)
	if err != nil {
		return nil, err
	}

	req := UpdateQuantityRequest{}
	err = myhttp.DecodeJSON(r, &req)
	if err != nil {
		return nil, err
	}

	return s.service.updateQuantity(vs, productID, req.Quantity), nil
}

func (s *webService) removeItem(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	productID, err := productIDFromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.service.removeItem(vs, productID), nil
}

func (s *webService) clearCart(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	return s.service.clearCart(vs), nil
}

func (s *webService) getCheckout(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	return s.service.view(vs), nil
}

func (s *webService) goToStep(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	step, err := checkout.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		return nil, err
	}
	return s.service.goTo(vs, step), nil
}

func (s *webService) completeCart(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	return s.service.completeCart(vs)
}

func (s *webService) completeContact(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	info, err := checkoutapi.CustomerInfoFromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.service.completeContact(vs, info)
}

func (s *webService) pay(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	return s.service.pay(c, r, vs)
}

func (s *webService) paymentSucceeded(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	s.service.paymentSucceeded(c, vs, r.URL.Query().Get("session_id"))
	return myhttp.SuccessResponse{
		Message: "Thank you for your order",
	}, nil
}

func (s *webService) paymentCancelled(c context.Context, r *http.Request, vs *visitorState) (interface{}, error) {
	s.service.paymentCancelled(c, vs)
	return myhttp.SuccessResponse{
		Message: "Payment cancelled, your cart is still available",
	}, nil
}

func productIDFromRequest(r *http.Request) (int, error) {
	idString := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idString)
	if err != nil {
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("invalid product id '%s'", idString))
	}
	return id, nil
}
