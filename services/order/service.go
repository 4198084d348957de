package order

import (
	"context"
	"fmt"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

type service struct {
	logger     mylog.Logger
	nower      mytime.Nower
	orderStore mystore.Store[Order]
	publisher  mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, orderStore mystore.Store[Order], publisher mypublisher.Publisher) *service {
	return &service{
		logger:     logger,
		nower:      nower,
		orderStore: orderStore,
		publisher:  publisher,
	}
}

// create stores the order of a completed payment session. A redelivered session returns
// the order created earlier and reports created=false.
func (s *service) create(c context.Context, order Order) (Order, bool, error) {
	if order.SessionID == "" {
		return Order{}, false, myerrors.NewInvalidInputError(fmt.Errorf("missing payment session id"))
	}

	created := false
	err := s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		existing, found, err := s.orderStore.Get(c, order.SessionID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", order.SessionID, err))
		}
		if found {
			order = existing
			return nil
		}

		order.Status = StatusPaid
		order.CreatedAt = s.nower.Now()
		order.LastModified = nil

		err = s.orderStore.Put(c, order.SessionID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", order.SessionID, err))
		}

		err = s.publisher.Publish(c, TopicName, OrderCreated{
			SessionID:   order.SessionID,
			Email:       order.Email,
			TotalAmount: order.TotalAmount,
			Currency:    order.Currency,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		created = true
		return nil
	})
	if err != nil {
		return Order{}, false, err
	}

	if created {
		s.logger.Log(c, order.SessionID, mylog.SeverityInfo, "Created order for session %s (%s %s)", order.SessionID, order.TotalAmount.StringFixed(2), order.Currency)
	} else {
		s.logger.Log(c, order.SessionID, mylog.SeverityWarn, "Order for session %s already exists -> ignore", order.SessionID)
	}

	return order, created, nil
}

func (s *service) list(c context.Context) ([]Order, error) {
	orders, err := s.orderStore.Query(c, nil, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching orders: %s", err))
	}
	return orders, nil
}

func (s *service) get(c context.Context, sessionID string) (Order, error) {
	order, found, err := s.orderStore.Get(c, sessionID)
	if err != nil {
		return Order{}, myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", sessionID, err))
	}
	if !found {
		return Order{}, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", sessionID))
	}
	return order, nil
}

func (s *service) updateStatus(c context.Context, sessionID string, status Status) (Order, error) {
	now := s.nower.Now()

	var order Order
	err := s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		var err error
		order, err = s.get(c, sessionID)
		if err != nil {
			return err
		}
		if order.Status == status {
			return nil
		}

		oldStatus := order.Status
		order.Status = status
		order.LastModified = &now

		err = s.orderStore.Put(c, sessionID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", sessionID, err))
		}

		err = s.publisher.Publish(c, TopicName, OrderStatusChanged{
			SessionID: sessionID,
			OldStatus: oldStatus,
			NewStatus: status,
			ChangedAt: now,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger.Log(c, sessionID, mylog.SeverityInfo, "Order %s has status %s", sessionID, order.Status)

	return order, nil
}
