package telegram

import (
	"regexp"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// MaxFrameSize caps a capture in progress. A stream that never produces an
// end marker would otherwise grow the buffer without bound.
const MaxFrameSize = 64 * 1024

var (
	startOfTelegram = regexp.MustCompile(`^/FLU\d\\`)
	endOfTelegram   = regexp.MustCompile(`^![A-Z0-9]{4}`)
)

// Framer assembles complete telegrams from a line oriented byte stream.
// It is a two state machine: idle until a start marker, then capturing
// until an end marker closes the frame.
type Framer struct {
	log       *logrus.Logger
	capturing bool
	buf       []byte
}

func NewFramer(log *logrus.Logger) *Framer {
	return &Framer{log: log}
}

// Push feeds one raw line, line terminator included, since the CRC is
// computed over the exact bytes on the wire. It returns a complete frame
// when the line closed one, nil otherwise.
func (f *Framer) Push(line []byte) []byte {
	if !utf8.Valid(line) {
		// Recoverable per-line failure: drop any partial capture.
		f.log.Warn("Dropping line with invalid byte sequence.")
		f.reset()
		return nil
	}

	trimmed := trimEOL(line)

	if startOfTelegram.Match(trimmed) {
		// A start marker during capture means the previous end marker
		// was missed; restart capture from here.
		f.buf = make([]byte, 0, 1024)
		f.capturing = true
	}

	if !f.capturing {
		return nil
	}

	f.buf = append(f.buf, line...)
	if len(f.buf) > MaxFrameSize {
		f.log.Errorf("Discarding oversized capture of %d bytes.", len(f.buf))
		f.reset()
		return nil
	}

	if endOfTelegram.Match(trimmed) {
		frame := f.buf
		f.reset()
		return frame
	}
	return nil
}

func (f *Framer) reset() {
	f.capturing = false
	f.buf = nil
}

func trimEOL(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
