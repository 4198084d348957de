package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myevents"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypubsub"
	"github.com/MarcGrol/coinshop/lib/myqueue"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

// TransactionalPublisher stores events in an outbox as part of the caller's transaction.
// A queued trigger later forwards everything unpublished to pubsub.
type TransactionalPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	pubsub    mypubsub.PubSub
	enveloper enveloper
	logger    mylog.Logger
}

func New(c context.Context, storeOpts mystore.Options, pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) (*TransactionalPublisher, func(), error) {
	outbox, outboxCleanup, err := mystore.New[myevents.EventEnvelope](c, storeOpts)
	if err != nil {
		return nil, nil, err
	}

	return &TransactionalPublisher{
		outbox:    outbox,
		queue:     queue,
		pubsub:    pubsub,
		enveloper: newEnveloper(nower),
		logger:    mylog.New("publisher"),
	}, outboxCleanup, nil
}

func (p *TransactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *TransactionalPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *TransactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	_, found, err := p.outbox.Get(c, envelope.UID)
	if err != nil {
		return fmt.Errorf("error fetching envelope %s: %s", envelope.UID, err)
	}
	if found {
		// redelivery: events that can legitimately repeat carry their own timestamp
		return nil
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope: %s", err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope)

	return nil
}

func (p *TransactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(p.logger)

		count, err := p.processTrigger(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Published %d events", count),
		})
	}
}

// processTrigger publishes every pending envelope, not only the one that triggered it,
// so a failed trigger is caught up by the next one.
func (p *TransactionalPublisher) processTrigger(c context.Context) (int, error) {
	count := 0
	err := p.outbox.RunInTransaction(c, func(c context.Context) error {
		count = 0

		envelopes, err := p.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "CreatedAt")
		if err != nil {
			return fmt.Errorf("error fetching envelopes: %s", err)
		}

		for _, envelope := range envelopes {
			jsonBytes, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("error serializing envelope %s: %s", envelope.UID, err)
			}

			err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("error publishing envelope %s: %s", envelope.UID, err)
			}

			envelope.Published = true
			err = p.outbox.Put(c, envelope.UID, envelope)
			if err != nil {
				return fmt.Errorf("error storing envelope %s: %s", envelope.UID, err)
			}
			count++

			p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Published event %s", envelope)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
