package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/loadmanager"
	"smartmeter/pkg/types"
)

// Sink consumes decoded telegrams together with the load states that were
// in effect when the telegram was processed. Delivery is best-effort,
// at-most-once: a failed write is logged and never retried.
type Sink interface {
	Name() string
	Write(t *types.Telegram, loadStates map[string]bool) error
}

// Loop drains the queue and fans each telegram out to the load manager and
// the sinks. Load control always runs before any sink write for a given
// telegram.
type Loop struct {
	log    *logrus.Logger
	queue  *Queue
	loads  *loadmanager.Manager
	status *StatusCache
	sinks  []Sink
}

func NewLoop(log *logrus.Logger, queue *Queue, loads *loadmanager.Manager, status *StatusCache, sinks []Sink) *Loop {
	return &Loop{
		log:    log,
		queue:  queue,
		loads:  loads,
		status: status,
		sinks:  sinks,
	}
}

// Run blocks until the context is cancelled. There is no drain on
// shutdown: a telegram that was dequeued but not yet written is lost.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info("Dispatch loop started.")
	for {
		t, ok := l.queue.Pop(ctx)
		if !ok {
			l.log.Info("Dispatch loop stopped.")
			return
		}

		loadStates := l.loads.Process(t)
		l.status.Update(t, loadStates)

		for _, sink := range l.sinks {
			if err := sink.Write(t, loadStates); err != nil {
				l.log.WithError(err).Warnf("Sink '%s' failed to write datapoint.", sink.Name())
			}
		}
	}
}
