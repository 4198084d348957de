package inquiry

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
	"github.com/MarcGrol/coinshop/lib/myuuid"
)

type webService struct {
	logger  mylog.Logger
	admin   myhttp.Credentials
	decoder *formcodec.Decoder
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(admin myhttp.Credentials, nower mytime.Nower, uuider myuuid.UUIDer, inquiryStore mystore.Store[Inquiry], publisher mypublisher.Publisher) *webService {
	logger := mylog.New("inquiry")
	return &webService{
		logger:  logger,
		admin:   admin,
		decoder: formcodec.NewDecoder(),
		service: newService(logger, nower, uuider, inquiryStore, publisher),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/inquiries/{kind}", s.submitPage()).Methods("POST")
	router.Handle("/api/admin/inquiries", s.admin.Protect(s.listPage())).Methods("GET")
}

func (s *webService) submitPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		kind, err := ParseKind(mux.Vars(r)["kind"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		req, err := s.requestFromHTTP(r, kind)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		inquiry, err := s.service.submit(c, req)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, inquiry)
	}
}

func (s *webService) listPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		inquiries, err := s.service.list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, inquiries)
	}
}

func (s *webService) requestFromHTTP(r *http.Request, kind Kind) (request, error) {
	var req request
	switch kind {
	case KindAppraisal:
		req = &AppraisalRequest{}
	case KindAuthentication:
		req = &AuthenticationRequest{}
	default:
		req = &ConsultationRequest{}
	}

	if myhttp.IsJSON(r) {
		err := myhttp.DecodeJSON(r, req)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	err := r.ParseForm()
	if err != nil {
		return nil, myerrors.NewInvalidInputError(err)
	}
	err = s.decoder.Decode(req, r.Form)
	if err != nil {
		return nil, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	return req, nil
}
