package inquiry

import (
	"context"
	"fmt"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
	"github.com/MarcGrol/coinshop/lib/myuuid"
)

type service struct {
	logger       mylog.Logger
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	inquiryStore mystore.Store[Inquiry]
	publisher    mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, uuider myuuid.UUIDer, inquiryStore mystore.Store[Inquiry], publisher mypublisher.Publisher) *service {
	return &service{
		logger:       logger,
		nower:        nower,
		uuider:       uuider,
		inquiryStore: inquiryStore,
		publisher:    publisher,
	}
}

func (s *service) submit(c context.Context, req request) (Inquiry, error) {
	err := req.Validate().AsError()
	if err != nil {
		return Inquiry{}, err
	}

	inquiry := req.toInquiry()
	inquiry.UID = s.uuider.Create()
	inquiry.CreatedAt = s.nower.Now()

	err = s.inquiryStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		err := s.inquiryStore.Put(c, inquiry.UID, inquiry)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing inquiry %s: %s", inquiry.UID, err))
		}

		err = s.publisher.Publish(c, TopicName, InquirySubmitted{
			UID:   inquiry.UID,
			Kind:  inquiry.Kind,
			Name:  inquiry.Name,
			Email: inquiry.Email,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Inquiry{}, err
	}

	s.logger.Log(c, inquiry.UID, mylog.SeverityInfo, "Received %s inquiry %s from %s", inquiry.Kind, inquiry.UID, inquiry.Email)

	return inquiry, nil
}

func (s *service) list(c context.Context) ([]Inquiry, error) {
	inquiries, err := s.inquiryStore.Query(c, nil, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching inquiries: %s", err))
	}
	return inquiries, nil
}
