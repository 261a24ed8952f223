package generateqr

import (
	"context"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/payment"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qrcode"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

type Request struct {
	OrderID string
}

type Response struct {
	PNG       []byte
	Payload   string
	ExpiresAt time.Time
}

type UseCase struct {
	uow       repository.UnitOfWork
	generator qrcode.Generator
	now       func() time.Time
}

func NewUseCase(uow repository.UnitOfWork, generator qrcode.Generator, now func() time.Time) *UseCase {
	return &UseCase{uow: uow, generator: generator, now: now}
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	order, err := uc.uow.Orders().FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentType() != entity.PaymentQRIS {
		return nil, payment.ErrNotQRIS
	}
	if order.Status() != entity.StatusPending || order.Archived() {
		return nil, entity.ErrOrderClosed
	}

	settings, err := uc.uow.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	if order.Expired(uc.now(), settings.PaymentWindow()) {
		return nil, entity.ErrPaymentExpired
	}

	pay, err := payment.ForOrder(order, settings)
	if err != nil {
		return nil, err
	}

	png, err := uc.generator.Generate(pay.Payload)
	if err != nil {
		return nil, err
	}
	return &Response{PNG: png, Payload: pay.Payload, ExpiresAt: pay.ExpiresAt}, nil
}
