package mypubsub

import "context"

//go:generate mockgen -source=api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}

// New talks to Google Cloud Pub/Sub when a project is given and keeps messages in memory otherwise.
func New(c context.Context, projectID string) (PubSub, func(), error) {
	if projectID == "" {
		return NewFake(), func() {}, nil
	}
	return newGcloudPubSub(c, projectID)
}
