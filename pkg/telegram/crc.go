package telegram

import (
	"bytes"
	"strconv"

	"github.com/sigurn/crc16"
)

// CRC16_ARC matches the checksum the Fluvius meters append to each telegram.
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// ValidateCRC checks a candidate frame against the hex checksum that
// follows its '!' delimiter. The checksum covers every byte up to and
// including the '!'. A missing delimiter or a malformed checksum is a
// validation failure, not an error.
func ValidateCRC(frame []byte) bool {
	pos := bytes.IndexByte(frame, '!')
	if pos < 0 {
		return false
	}

	data := frame[:pos+1]
	tail := string(bytes.TrimSpace(frame[pos+1:]))
	provided, err := strconv.ParseUint(tail, 16, 16)
	if err != nil {
		return false
	}

	return crc16.Checksum(data, crcTable) == uint16(provided)
}
