package telegram

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func pushAll(f *Framer, lines ...string) [][]byte {
	var frames [][]byte
	for _, line := range lines {
		if frame := f.Push([]byte(line + "\r\n")); frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}

func TestFramerEmitsOneFrame(t *testing.T) {
	f := NewFramer(testLogger())

	frames := pushAll(f,
		"noise before the telegram",
		`/FLU5\253769484_A`,
		"1-0:1.7.0(00.507*kW)",
		"1-0:2.7.0(00.000*kW)",
		"!9B98",
	)

	require.Len(t, frames, 1)
	// All lines from start to end marker, terminators included.
	assert.Equal(t, 4, bytes.Count(frames[0], []byte("\r\n")))
	assert.True(t, bytes.HasPrefix(frames[0], []byte(`/FLU5\`)))
	assert.True(t, bytes.HasSuffix(frames[0], []byte("!9B98\r\n")))
}

func TestFramerArbitraryBodyLineCount(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		f := NewFramer(testLogger())
		lines := []string{`/FLU5\253769484_A`}
		for i := 0; i < n; i++ {
			lines = append(lines, fmt.Sprintf("1-0:1.7.0(00.%03d*kW)", i))
		}
		lines = append(lines, "!ABCD")

		frames := pushAll(f, lines...)
		require.Len(t, frames, 1, "body lines: %d", n)
		assert.Equal(t, n+2, bytes.Count(frames[0], []byte("\r\n")))
	}
}

func TestFramerResyncOnSecondStartMarker(t *testing.T) {
	f := NewFramer(testLogger())

	// The first capture misses its end marker; the second start marker
	// restarts the capture and only that frame is emitted.
	frames := pushAll(f,
		`/FLU5\253769484_A`,
		"1-0:1.7.0(00.507*kW)",
		`/FLU5\253769484_A`,
		"1-0:1.7.0(00.111*kW)",
		"!ABCD",
	)

	require.Len(t, frames, 1)
	assert.Contains(t, string(frames[0]), "00.111")
	assert.NotContains(t, string(frames[0]), "00.507")
}

func TestFramerIgnoresLinesWhileIdle(t *testing.T) {
	f := NewFramer(testLogger())

	frames := pushAll(f,
		"1-0:1.7.0(00.507*kW)",
		"!ABCD",
	)
	assert.Empty(t, frames)
}

func TestFramerDropsCaptureOnInvalidBytes(t *testing.T) {
	f := NewFramer(testLogger())

	require.Nil(t, f.Push([]byte("/FLU5\\253769484_A\r\n")))
	require.Nil(t, f.Push([]byte{0xff, 0xfe, '\r', '\n'}))

	// The capture was dropped: the end marker no longer closes a frame.
	assert.Nil(t, f.Push([]byte("!ABCD\r\n")))
}

func TestFramerDiscardsOversizedCapture(t *testing.T) {
	f := NewFramer(testLogger())

	require.Nil(t, f.Push([]byte("/FLU5\\253769484_A\r\n")))
	huge := append(bytes.Repeat([]byte{'a'}, MaxFrameSize), '\r', '\n')
	require.Nil(t, f.Push(huge))

	assert.Nil(t, f.Push([]byte("!ABCD\r\n")))
}
