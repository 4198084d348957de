package checkoutstripe

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/services/checkoutapi"
)

const maxWebhookBodySize = int64(65536)

type webService struct {
	logger  mylog.Logger
	baseURL string
	service *service
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, payer Payer, orders OrderCreator, publisher mypublisher.Publisher) *webService {
	logger := mylog.New("checkoutstripe")
	return &webService{
		logger:  logger,
		baseURL: cfg.BaseURL,
		service: newService(cfg, logger, payer, orders, publisher),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/checkout-session", s.createSessionPage()).Methods("POST")
	router.HandleFunc("/api/stripe/webhook", s.webhookPage()).Methods("POST")
}

// CreateSession lets the storefront start a payment for the cart in the visitor's session.
func (s *webService) CreateSession(c context.Context, r *http.Request, req checkoutapi.SessionRequest) (checkoutapi.SessionResponse, error) {
	return s.service.createSession(c, myhttp.HostnameWithScheme(s.baseURL, r), req)
}

func (s *webService) createSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := checkoutapi.SessionRequest{}
		err := myhttp.DecodeJSON(r, &req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		resp, err := s.CreateSession(c, r, req)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) webhookPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error reading webhook body: %s", err)))
			return
		}

		err = s.service.handleWebhook(c, payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, WebhookResponse{Received: true})
	}
}
