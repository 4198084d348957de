package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/coinshop/lib/myevents"
	"github.com/MarcGrol/coinshop/lib/mypubsub"
	"github.com/MarcGrol/coinshop/lib/myqueue"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

type coinSold struct {
	SKU string
}

func (e coinSold) GetEventTypeName() string {
	return "coin.sold"
}

func (e coinSold) GetAggregateName() string {
	return e.SKU
}

func TestTransactionalPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// setup
	c := context.TODO()
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	pubsub := mypubsub.NewFake()
	queue := myqueue.NewFake()

	publisher, cleanup, err := New(c, mystore.Options{}, pubsub, queue, nower)
	assert.NoError(t, err)
	defer cleanup()

	router := mux.NewRouter()
	publisher.RegisterEndpoints(c, router)

	t.Run("publish stores once and enqueues trigger", func(t *testing.T) {
		// when
		err := publisher.Publish(c, "coin", coinSold{SKU: "krugerrand-1967"})
		assert.NoError(t, err)
		err = publisher.Publish(c, "coin", coinSold{SKU: "krugerrand-1967"})
		assert.NoError(t, err)

		// then
		envelopes, err := publisher.outbox.List(c)
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
		assert.Equal(t, "coin.sold", envelopes[0].EventTypeName)
		assert.False(t, envelopes[0].Published)
		assert.Len(t, queue.Tasks, 1)
		assert.Equal(t, "/pubsub/coin/"+envelopes[0].UID, queue.Tasks[0].WebhookURLPath)
		assert.Empty(t, pubsub.Messages)
	})

	t.Run("trigger forwards pending envelopes", func(t *testing.T) {
		// when
		request, _ := http.NewRequest(http.MethodPut, queue.Tasks[0].WebhookURLPath, nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Len(t, pubsub.Messages, 1)
		assert.Equal(t, "coin", pubsub.Messages[0].Topic)

		envelopes, err := publisher.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: true}}, "")
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
	})

	t.Run("second trigger has nothing left", func(t *testing.T) {
		_, err := publisher.processTrigger(c)
		assert.NoError(t, err)
		assert.Len(t, pubsub.Messages, 1)
	})

	t.Run("republishing forwarded event is ignored", func(t *testing.T) {
		// when
		err := publisher.Publish(c, "coin", coinSold{SKU: "krugerrand-1967"})
		assert.NoError(t, err)
		count, err := publisher.processTrigger(c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Len(t, pubsub.Messages, 1)
	})
}

func TestEnvelopeUIDIgnoresTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime)
	nower.EXPECT().Now().Return(mytime.ExampleTime.Add(1))

	e := newEnveloper(nower)
	first, err := e.do("coin", coinSold{SKU: "1"})
	assert.NoError(t, err)
	second, err := e.do("coin", coinSold{SKU: "1"})
	assert.NoError(t, err)

	assert.Equal(t, first.UID, second.UID)
	assert.NotEqual(t, first.CreatedAt, second.CreatedAt)

	var _ myevents.Event = coinSold{}
}
