package myqueue

import (
	"context"
)

type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
}

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	Enqueue(c context.Context, task Task) error
}

type Options struct {
	ProjectID  string
	LocationID string
	QueueName  string
}

// New uses Cloud Tasks when a project is given and an in-memory queue otherwise.
func New(c context.Context, opts Options) (TaskQueuer, func(), error) {
	if opts.ProjectID == "" {
		return NewFake(), func() {}, nil
	}
	return newGcloudQueue(c, opts)
}
