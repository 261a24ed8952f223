package qris

import (
	"fmt"
	"strings"

	"github.com/howeyc/crc16"
)

// Checksum returns the CRC-16/CCITT-FALSE of data as four uppercase hex digits.
func Checksum(data string) string {
	return fmt.Sprintf("%04X", crc16.ChecksumCCITTFalse([]byte(data)))
}

// VerifyChecksum reports whether the trailing four characters of payload are
// the checksum of everything before them.
func VerifyChecksum(payload string) bool {
	if len(payload) <= checksumLength {
		return false
	}
	body, sum := payload[:len(payload)-checksumLength], payload[len(payload)-checksumLength:]
	return strings.EqualFold(Checksum(body), sum)
}
