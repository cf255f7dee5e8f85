package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrEmptyTimestamp     = errors.New("meter timestamp is empty")
	ErrMalformedTimestamp = errors.New("malformed meter timestamp")
)

var (
	zoneSummer = time.FixedZone("UTC+2", 2*60*60)
	zoneWinter = time.FixedZone("UTC+1", 1*60*60)
)

// ParseTimestamp converts the meter's 13 character timestamp
// (YYMMDDHHMMSS plus S for summer or W for winter) to a time.Time with a
// fixed UTC offset. The meter encodes its own DST state, so no DST math
// happens here. The century is fixed at 20xx, same assumption the meter
// firmware makes.
func ParseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrEmptyTimestamp
	}
	if len(raw) != 13 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}

	var zone *time.Location
	switch raw[12] {
	case 'S':
		zone = zoneSummer
	case 'W':
		zone = zoneWinter
	default:
		return time.Time{}, fmt.Errorf("%w: unknown DST marker in %q", ErrMalformedTimestamp, raw)
	}

	fields := make([]int, 6)
	for i := range fields {
		n, err := strconv.Atoi(raw[i*2 : i*2+2])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
		}
		fields[i] = n
	}

	return time.Date(
		2000+fields[0], time.Month(fields[1]), fields[2],
		fields[3], fields[4], fields[5], 0, zone,
	), nil
}

// DriftSeconds is local minus meter time in whole seconds. A large positive
// drift means the meter clock is lagging. Informational only, never a
// reason to reject a telegram.
func DriftSeconds(local, meter time.Time) int {
	return int(local.Sub(meter) / time.Second)
}
