package payment

import (
	"errors"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
)

var (
	ErrNotQRIS            = errors.New("order is not paid by qris")
	ErrQRISNotConfigured  = errors.New("store has no qris payload configured")
	ErrPaymentUnavailable = errors.New("qris payload could not be composed")
)

type Payment struct {
	Payload   string
	Amount    int64
	ExpiresAt time.Time
}

// ForOrder composes the dynamic QRIS payload for the order total. The result
// is refused unless its checksum verifies, so a degenerate merchant payload
// never reaches a customer.
func ForOrder(order *entity.Order, settings *entity.Settings) (*Payment, error) {
	if order.PaymentType() != entity.PaymentQRIS {
		return nil, ErrNotQRIS
	}
	if settings.QRISPayload == "" {
		return nil, ErrQRISNotConfigured
	}

	payload := qris.ComposeDynamicPayload(settings.QRISPayload, order.Total())
	if payload == settings.QRISPayload || !qris.VerifyChecksum(payload) {
		return nil, ErrPaymentUnavailable
	}

	return &Payment{
		Payload:   payload,
		Amount:    order.Total(),
		ExpiresAt: order.ExpiresAt(settings.PaymentWindow()),
	}, nil
}
