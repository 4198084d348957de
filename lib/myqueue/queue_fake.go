package myqueue

import (
	"context"
	"sync"
)

type FakeTaskQueue struct {
	sync.Mutex
	Tasks []Task
}

func NewFake() *FakeTaskQueue {
	return &FakeTaskQueue{}
}

func (q *FakeTaskQueue) Enqueue(c context.Context, task Task) error {
	q.Lock()
	defer q.Unlock()

	for _, t := range q.Tasks {
		if t.UID == task.UID {
			return nil
		}
	}
	q.Tasks = append(q.Tasks, task)
	return nil
}
