package entity

import (
	"errors"
	"time"
)

const (
	DefaultPaymentWindowMinutes = 10
	DefaultQRISFee              = 200
)

var (
	ErrPaymentWindow = errors.New("payment window must be at least one minute")
	ErrNegativeFee   = errors.New("fee must not be negative")
)

type Settings struct {
	StoreName            string `json:"store_name"`
	WhatsApp             string `json:"whatsapp"`
	QRISPayload          string `json:"qris_payload"`
	PaymentWindowMinutes int    `json:"payment_window_minutes"`
	QRISFee              int64  `json:"qris_fee"`
}

func DefaultSettings() *Settings {
	return &Settings{
		PaymentWindowMinutes: DefaultPaymentWindowMinutes,
		QRISFee:              DefaultQRISFee,
	}
}

func (s *Settings) Validate() error {
	if s.PaymentWindowMinutes < 1 {
		return ErrPaymentWindow
	}
	if s.QRISFee < 0 {
		return ErrNegativeFee
	}
	return nil
}

func (s *Settings) PaymentWindow() time.Duration {
	return time.Duration(s.PaymentWindowMinutes) * time.Minute
}

func (s *Settings) FeeFor(p PaymentType) int64 {
	if p == PaymentQRIS {
		return s.QRISFee
	}
	return 0
}
