package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/types"
)

// Queue is the bounded FIFO between the ingest worker and the dispatch
// loop. The producer never blocks: when the consumer stalls long enough to
// fill the queue, the oldest telegram is dropped. Live readings arrive
// every second, so dropping stale data beats growing without bound.
type Queue struct {
	log *logrus.Logger
	ch  chan *types.Telegram
}

func NewQueue(capacity int, log *logrus.Logger) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{
		log: log,
		ch:  make(chan *types.Telegram, capacity),
	}
}

// Push enqueues without blocking. Single producer only.
func (q *Queue) Push(t *types.Telegram) {
	for {
		select {
		case q.ch <- t:
			return
		default:
		}
		select {
		case dropped := <-q.ch:
			q.log.Warnf("Queue full, dropping telegram received at %s.",
				dropped.Received.Format("15:04:05"))
		default:
		}
	}
}

// Pop blocks until a telegram is available or the context is cancelled.
func (q *Queue) Pop(ctx context.Context) (*types.Telegram, bool) {
	select {
	case t := <-q.ch:
		return t, true
	case <-ctx.Done():
		return nil, false
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}
