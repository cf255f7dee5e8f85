package telegram

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/types"
)

// driftWarnSeconds is the drift magnitude above which we warn that the
// meter clock and the local clock disagree.
const driftWarnSeconds = 60

// Decoder turns a CRC validated frame into a typed telegram by applying
// the field table to each line.
type Decoder struct {
	log *logrus.Logger
	now func() time.Time
}

func NewDecoder(log *logrus.Logger) *Decoder {
	return &Decoder{log: log, now: time.Now}
}

// Decode extracts every known field from the frame. Lines that match no
// field spec contribute nothing; fields absent from the frame are simply
// absent from the result. The telegram is stamped with the local receive
// time, not the meter time.
func (d *Decoder) Decode(frame []byte) *types.Telegram {
	t := types.NewTelegram(d.now())

	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimRight(line, "\r")
		for _, spec := range Fields {
			if !strings.HasPrefix(line, spec.Prefix) || len(line) < spec.End {
				continue
			}
			t.Fields[spec.Key] = Coerce(line[spec.Start:spec.End])
		}
	}

	d.checkDrift(t)
	return t
}

// checkDrift compares the meter's own timestamp against the wall clock.
// A bad meter timestamp is logged and skipped; the rest of the telegram
// stays usable.
func (d *Decoder) checkDrift(t *types.Telegram) {
	raw, ok := t.Value("timestamp")
	if !ok {
		return
	}

	meterTime, err := ParseTimestamp(raw.Text())
	if err != nil {
		d.log.WithError(err).Warn("Skipping drift check, telegram timestamp is unusable.")
		return
	}

	drift := DriftSeconds(t.Received, meterTime)
	if drift > driftWarnSeconds || drift < -driftWarnSeconds {
		d.log.Warnf("Meter clock drift is %d seconds.", drift)
	}
}
