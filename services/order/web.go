package order

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

type webService struct {
	logger  mylog.Logger
	admin   myhttp.Credentials
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(admin myhttp.Credentials, nower mytime.Nower, orderStore mystore.Store[Order], publisher mypublisher.Publisher) *webService {
	logger := mylog.New("order")
	return &webService{
		logger:  logger,
		admin:   admin,
		service: newService(logger, nower, orderStore, publisher),
	}
}

// Create is called by the payment webhook once a session has been paid.
func (s *webService) Create(c context.Context, order Order) (Order, bool, error) {
	return s.service.create(c, order)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.Handle("/api/admin/orders", s.admin.Protect(s.listOrdersPage())).Methods("GET")
	router.Handle("/api/admin/orders/{sessionID}", s.admin.Protect(s.getOrderPage())).Methods("GET")
	router.Handle("/api/admin/orders/{sessionID}/status", s.admin.Protect(s.updateStatusPage())).Methods("PUT")
}

func (s *webService) listOrdersPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		orders, err := s.service.list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, orders)
	}
}

func (s *webService) getOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		order, err := s.service.get(c, mux.Vars(r)["sessionID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (s *webService) updateStatusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		update := statusUpdate{}
		err := myhttp.DecodeJSON(r, &update)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		status, err := ParseStatus(update.Status)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		order, err := s.service.updateStatus(c, mux.Vars(r)["sessionID"], status)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}
