// Package qris builds and inspects EMVCo merchant-presented QR payloads as
// used by Indonesian QRIS.
package qris

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minPayloadLength = 10

	pointOfInitiationOffset  = 4
	staticPointOfInitiation  = "010211"
	dynamicPointOfInitiation = "010212"

	amountTag      = "54"
	currencyAnchor = "5303360"
	countryAnchor  = "5802ID"

	checksumPrefix = "6304"
	checksumLength = 4
)

// ComposeDynamicPayload turns a static merchant payload into a one-time
// payload for amount, in the smallest currency unit.
//
// Degenerate input never fails: a payload shorter than ten characters or a
// negative amount is returned unchanged, and a payload whose point of
// initiation is not static keeps whatever marker it had. Callers that need a
// guarantee should run VerifyChecksum on the result.
func ComposeDynamicPayload(staticPayload string, amount int64) string {
	if len(staticPayload) < minPayloadLength || amount < 0 {
		return staticPayload
	}

	payload := strings.TrimSpace(staticPayload)
	if len(payload) > checksumLength {
		payload = payload[:len(payload)-checksumLength]
	}

	payload = markDynamic(payload)
	payload = insertAmount(payload, amountField(amount))

	payload += checksumPrefix
	return payload + Checksum(payload)
}

func markDynamic(payload string) string {
	end := pointOfInitiationOffset + len(staticPointOfInitiation)
	if len(payload) < end || payload[pointOfInitiationOffset:end] != staticPointOfInitiation {
		return payload
	}
	return payload[:pointOfInitiationOffset] + dynamicPointOfInitiation + payload[end:]
}

func amountField(amount int64) string {
	value := strconv.FormatInt(amount, 10)
	return fmt.Sprintf("%s%02d%s", amountTag, len(value), value)
}

// insertAmount places the field right after the currency tag, else right
// before the country tag, else at the end.
func insertAmount(payload, field string) string {
	if i := strings.Index(payload, currencyAnchor); i != -1 {
		split := i + len(currencyAnchor)
		return payload[:split] + field + payload[split:]
	}
	if i := strings.Index(payload, countryAnchor); i != -1 {
		return payload[:i] + field + payload[i:]
	}
	return payload + field
}
