package myqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeQueueName(t *testing.T) {
	assert.Equal(t, "projects/coinshop/locations/europe-west1/queues/default",
		composeQueueName(Options{ProjectID: "coinshop", LocationID: "europe-west1"}))
	assert.Equal(t, "projects/coinshop/locations/europe-west1/queues/outbox",
		composeQueueName(Options{ProjectID: "coinshop", LocationID: "europe-west1", QueueName: "outbox"}))
}

func TestFakeQueueDeduplicates(t *testing.T) {
	c := context.TODO()
	q, cleanup, err := New(c, Options{})
	assert.NoError(t, err)
	defer cleanup()

	assert.NoError(t, q.Enqueue(c, Task{UID: "1", WebhookURLPath: "/pubsub/order/1"}))
	assert.NoError(t, q.Enqueue(c, Task{UID: "1", WebhookURLPath: "/pubsub/order/1"}))
	assert.NoError(t, q.Enqueue(c, Task{UID: "2", WebhookURLPath: "/pubsub/order/2"}))

	assert.Len(t, q.(*FakeTaskQueue).Tasks, 2)
}
