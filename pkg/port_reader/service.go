package port_reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/sirupsen/logrus"

	"smartmeter/pkg/config"
	"smartmeter/pkg/dispatch"
	"smartmeter/pkg/telegram"
)

// NewSerialWorker reads live telegrams from the meter's P1 port.
func NewSerialWorker(cfg config.SerialConfig, queue *dispatch.Queue, log *logrus.Logger) (*Worker, error) {
	parity, err := parityMode(cfg.Parity)
	if err != nil {
		return nil, err
	}

	options := serial.OpenOptions{
		PortName:        cfg.Device,
		BaudRate:        cfg.Baudrate,
		DataBits:        cfg.Bytesize,
		StopBits:        cfg.Stopbits,
		ParityMode:      parity,
		MinimumReadSize: 1,
	}

	return &Worker{
		log:     log,
		queue:   queue,
		framer:  telegram.NewFramer(log),
		decoder: telegram.NewDecoder(log),
		open: func() (io.ReadCloser, error) {
			port, err := serial.Open(options)
			if err != nil {
				return nil, fmt.Errorf("failed to open serial port: %w", err)
			}
			log.Infof("Connected to P1 port on %s.", cfg.Device)
			return port, nil
		},
	}, nil
}

// NewReplayWorker reads pre-recorded telegrams from a file, one line per
// throttle tick, to mimic the pace of the real meter.
func NewReplayWorker(path string, throttle time.Duration, queue *dispatch.Queue, log *logrus.Logger) *Worker {
	return &Worker{
		log:      log,
		queue:    queue,
		framer:   telegram.NewFramer(log),
		decoder:  telegram.NewDecoder(log),
		throttle: throttle,
		open: func() (io.ReadCloser, error) {
			log.Infof("Replaying meter data from %s.", path)
			return os.Open(path)
		},
	}
}

// Run reads the source until the context is cancelled, the source is
// exhausted (replay) or too many consecutive read errors occurred.
// Integrity failures never stop the worker; the next frame is attempted.
func (w *Worker) Run(ctx context.Context) error {
	source, err := w.open()
	if err != nil {
		return err
	}

	// Unblock the pending read on cancellation.
	go func() {
		<-ctx.Done()
		source.Close()
	}()

	// Tolerance before we give up on the source.
	consecutiveErrors := 0
	maxErrors := 10
	reader := bufio.NewReader(source)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			w.handleLine(line)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err == io.EOF {
				w.log.Info("Replay source exhausted.")
				return nil
			}
			consecutiveErrors++
			w.log.Errorf("Error reading telegram line (%d/%d): %v", consecutiveErrors, maxErrors, err)
			if consecutiveErrors >= maxErrors {
				return fmt.Errorf("too many consecutive read errors: %w", err)
			}
			time.Sleep(time.Second)
			continue
		}
		consecutiveErrors = 0

		if w.throttle > 0 {
			select {
			case <-time.After(w.throttle):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Worker) handleLine(line []byte) {
	frame := w.framer.Push(line)
	if frame == nil {
		return
	}

	if !telegram.ValidateCRC(frame) {
		w.log.Warn("Telegram has an invalid CRC, skipping.")
		return
	}
	w.log.Debug("Telegram has a valid CRC.")

	w.queue.Push(w.decoder.Decode(frame))
}

func parityMode(p string) (serial.ParityMode, error) {
	switch p {
	case "", "N":
		return serial.PARITY_NONE, nil
	case "E":
		return serial.PARITY_EVEN, nil
	case "O":
		return serial.PARITY_ODD, nil
	}
	return serial.PARITY_NONE, fmt.Errorf("unknown parity %q, want N, E or O", p)
}
