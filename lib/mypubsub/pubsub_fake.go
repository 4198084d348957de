package mypubsub

import (
	"context"
	"sync"
)

type Message struct {
	Topic string
	Data  string
}

type FakePubSub struct {
	sync.Mutex
	Topics   map[string]bool
	Messages []Message
}

func NewFake() *FakePubSub {
	return &FakePubSub{
		Topics: map[string]bool{},
	}
}

func (ps *FakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.Topics[topic] = true
	return nil
}

func (ps *FakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.Messages = append(ps.Messages, Message{Topic: topic, Data: data})
	return nil
}
