package myqueue

import (
	"context"
	"os"
	"sync"
)

// FakeTaskQueue remembers enqueued tasks without ever dispatching them.
type FakeTaskQueue struct {
	sync.Mutex
	Tasks []Task
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakeQueue
	}
}

func newFakeQueue(c context.Context) (TaskQueuer, func(), error) {
	return NewFake(), func() {}, nil
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

func (q *FakeTaskQueue) IsLastAttempt(c context.Context, taskUID string) (int32, int32) {
	return 0, 0
}
