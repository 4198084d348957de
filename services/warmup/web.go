package warmup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/services/catalog"
)

type webService struct {
	logger        mylog.Logger
	categoryStore mystore.Store[catalog.Category]
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(categoryStore mystore.Store[catalog.Category]) *webService {
	logger := mylog.New("warmup")
	return &webService{
		logger:        logger,
		categoryStore: categoryStore,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage opens the storage connection before the first visitor arrives.
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		categories, err := s.categoryStore.List(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(fmt.Errorf("error warming up storage: %s", err)))
			return
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Warmed up with %d categories", len(categories))

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
