package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

var ErrProofRequired = errors.New("proof url is required")

// Details is an order as seen by the customer polling it.
type Details struct {
	Order *entity.Order
	// ExpiresAt is zero for cash orders.
	ExpiresAt time.Time
	Expired   bool
}

type UseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewUseCase(uow repository.UnitOfWork, now func() time.Time) *UseCase {
	return &UseCase{uow: uow, now: now}
}

func (uc *UseCase) Get(ctx context.Context, id string) (*Details, error) {
	o, err := uc.uow.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := uc.uow.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}

	d := &Details{Order: o, Expired: o.Expired(uc.now(), settings.PaymentWindow())}
	if o.PaymentType() == entity.PaymentQRIS {
		d.ExpiresAt = o.ExpiresAt(settings.PaymentWindow())
	}
	return d, nil
}

func (uc *UseCase) UploadProof(ctx context.Context, id, proofURL string) (*entity.Order, error) {
	if strings.TrimSpace(proofURL) == "" {
		return nil, ErrProofRequired
	}
	return uc.mutate(ctx, id, func(o *entity.Order, s *entity.Settings) error {
		return o.AttachProof(proofURL, uc.now(), s.PaymentWindow())
	})
}

// Cancel is the customer withdrawing a pending order.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*entity.Order, error) {
	return uc.mutate(ctx, id, func(o *entity.Order, _ *entity.Settings) error {
		return o.Cancel(uc.now())
	})
}

// Resolve is the merchant's decision on an order, active or already in history.
func (uc *UseCase) Resolve(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	return uc.mutate(ctx, id, func(o *entity.Order, _ *entity.Settings) error {
		return o.Resolve(status, uc.now())
	})
}

func (uc *UseCase) ListActive(ctx context.Context) ([]*entity.Order, error) {
	return uc.uow.Orders().List(ctx, false)
}

func (uc *UseCase) ListHistory(ctx context.Context) ([]*entity.Order, error) {
	return uc.uow.Orders().List(ctx, true)
}

func (uc *UseCase) mutate(ctx context.Context, id string, fn func(*entity.Order, *entity.Settings) error) (*entity.Order, error) {
	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := tx.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := tx.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := fn(o, settings); err != nil {
		return nil, err
	}
	if err := tx.Orders().Update(ctx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
