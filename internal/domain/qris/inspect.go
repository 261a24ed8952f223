package qris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedField   = errors.New("qris: malformed field")
	ErrMissingChecksum  = errors.New("qris: checksum field missing")
	ErrChecksumMismatch = errors.New("qris: checksum mismatch")
	ErrNotStatic        = errors.New("qris: payload is not static")
	ErrAmountPresent    = errors.New("qris: static payload carries an amount")
)

const (
	tagFormatIndicator   = "00"
	tagPointOfInitiation = "01"
	tagMerchantCategory  = "52"
	tagCurrency          = "53"
	tagAmount            = amountTag
	tagCountry           = "58"
	tagMerchantName      = "59"
	tagMerchantCity      = "60"
	tagPostalCode        = "61"
	tagChecksum          = "63"

	tagLength    = 2
	lengthDigits = 2

	staticInitiationValue  = "11"
	dynamicInitiationValue = "12"
)

type Initiation string

const (
	Static  Initiation = "static"
	Dynamic Initiation = "dynamic"
)

type Field struct {
	Tag   string
	Value string
}

type Info struct {
	FormatIndicator   string
	PointOfInitiation Initiation
	MerchantCategory  string
	Currency          string
	Amount            string
	Country           string
	MerchantName      string
	MerchantCity      string
	PostalCode        string
	Checksum          string
}

// ParseFields splits payload into its top-level TLV fields in order. Lengths
// count characters, not bytes.
func ParseFields(payload string) ([]Field, error) {
	runes := []rune(payload)
	var fields []Field
	for i := 0; i < len(runes); {
		if i+tagLength+lengthDigits > len(runes) {
			return nil, fmt.Errorf("%w: truncated header at %d", ErrMalformedField, i)
		}
		tag := string(runes[i : i+tagLength])
		i += tagLength

		n, err := strconv.Atoi(string(runes[i : i+lengthDigits]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad length for tag %s", ErrMalformedField, tag)
		}
		i += lengthDigits

		if i+n > len(runes) {
			return nil, fmt.Errorf("%w: tag %s overruns payload", ErrMalformedField, tag)
		}
		fields = append(fields, Field{Tag: tag, Value: string(runes[i : i+n])})
		i += n
	}
	return fields, nil
}

// Inspect parses payload and checks its trailing checksum field.
func Inspect(payload string) (*Info, error) {
	payload = strings.TrimSpace(payload)
	fields, err := ParseFields(payload)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields[len(fields)-1].Tag != tagChecksum {
		return nil, ErrMissingChecksum
	}
	if !VerifyChecksum(payload) || !strings.HasSuffix(payload[:len(payload)-checksumLength], checksumPrefix) {
		return nil, ErrChecksumMismatch
	}

	info := &Info{}
	for _, f := range fields {
		switch f.Tag {
		case tagFormatIndicator:
			info.FormatIndicator = f.Value
		case tagPointOfInitiation:
			info.PointOfInitiation = initiation(f.Value)
		case tagMerchantCategory:
			info.MerchantCategory = f.Value
		case tagCurrency:
			info.Currency = f.Value
		case tagAmount:
			info.Amount = f.Value
		case tagCountry:
			info.Country = f.Value
		case tagMerchantName:
			info.MerchantName = f.Value
		case tagMerchantCity:
			info.MerchantCity = f.Value
		case tagPostalCode:
			info.PostalCode = f.Value
		case tagChecksum:
			info.Checksum = f.Value
		}
	}
	return info, nil
}

// ValidateStatic accepts only well-formed static payloads without an amount,
// which is what ComposeDynamicPayload expects as input.
func ValidateStatic(payload string) error {
	info, err := Inspect(payload)
	if err != nil {
		return err
	}
	if info.PointOfInitiation != Static {
		return ErrNotStatic
	}
	if info.Amount != "" {
		return ErrAmountPresent
	}
	return nil
}

func initiation(v string) Initiation {
	switch v {
	case staticInitiationValue:
		return Static
	case dynamicInitiationValue:
		return Dynamic
	default:
		return Initiation(v)
	}
}
