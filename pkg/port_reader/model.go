package port_reader

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/dispatch"
	"smartmeter/pkg/telegram"
)

// Worker owns the byte source and runs the frame/validate/decode pipeline
// on it. It shares nothing with the dispatch side except the queue.
type Worker struct {
	log     *logrus.Logger
	queue   *dispatch.Queue
	framer  *telegram.Framer
	decoder *telegram.Decoder

	open func() (io.ReadCloser, error)

	// throttle paces replay sources to simulate real-time arrival.
	// Zero for live serial.
	throttle time.Duration
}
