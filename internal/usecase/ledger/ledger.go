package ledger

import (
	"context"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

// Summary covers confirmed orders in history only; pending, rejected and
// cancelled orders earn nothing.
type Summary struct {
	Revenue   int64
	Fees      int64
	ItemsSold int
	Losses    int64
	Net       int64
	Active    int
	Confirmed int
}

type UseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewUseCase(uow repository.UnitOfWork, now func() time.Time) *UseCase {
	return &UseCase{uow: uow, now: now}
}

func (uc *UseCase) AddLoss(ctx context.Context, amount int64, description string) (*entity.Loss, error) {
	l, err := entity.NewLoss(amount, description, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.uow.Losses().Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *UseCase) Losses(ctx context.Context) ([]*entity.Loss, error) {
	return uc.uow.Losses().List(ctx)
}

func (uc *UseCase) Summary(ctx context.Context) (*Summary, error) {
	active, err := uc.uow.Orders().List(ctx, false)
	if err != nil {
		return nil, err
	}
	history, err := uc.uow.Orders().List(ctx, true)
	if err != nil {
		return nil, err
	}
	losses, err := uc.uow.Losses().List(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{Active: len(active)}
	for _, o := range history {
		if o.Status() != entity.StatusConfirmed {
			continue
		}
		s.Confirmed++
		s.Revenue += o.Subtotal()
		s.Fees += o.Fee()
		s.ItemsSold += o.ItemCount()
	}
	for _, l := range losses {
		s.Losses += l.Amount()
	}
	s.Net = s.Revenue + s.Fees - s.Losses
	return s, nil
}

// Reset wipes orders, losses, products, settings and content.
func (uc *UseCase) Reset(ctx context.Context) error {
	return uc.uow.Reset(ctx)
}
