package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampSummer(t *testing.T) {
	ts, err := ParseTimestamp("211024195235S")
	require.NoError(t, err)
	assert.Equal(t, "2021-10-24T19:52:35+02:00", ts.Format(time.RFC3339))
}

func TestParseTimestampWinter(t *testing.T) {
	ts, err := ParseTimestamp("211224195235W")
	require.NoError(t, err)
	assert.Equal(t, "2021-12-24T19:52:35+01:00", ts.Format(time.RFC3339))
}

func TestParseTimestampEmpty(t *testing.T) {
	_, err := ParseTimestamp("")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)
}

func TestParseTimestampMalformed(t *testing.T) {
	for _, raw := range []string{
		"21102419523S",   // too short
		"2110241952350S", // too long
		"211024195235X",  // unknown DST marker
		"2110bad95235S",  // non-digits
	} {
		_, err := ParseTimestamp(raw)
		assert.ErrorIs(t, err, ErrMalformedTimestamp, "input %q", raw)
	}
}

func TestDriftSeconds(t *testing.T) {
	meter, err := ParseTimestamp("211024195235S")
	require.NoError(t, err)

	local := meter.Add(90 * time.Second)
	assert.Equal(t, 90, DriftSeconds(local, meter))

	// Negative drift: the meter clock runs ahead of us.
	assert.Equal(t, -90, DriftSeconds(meter, local))
}
