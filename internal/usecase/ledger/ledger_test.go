package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository/mocks"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/ledger"
)

var (
	now   = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	buyer = entity.Customer{Name: "Sari", WhatsApp: "+628123456789", Address: "Jl. Merdeka 1"}
)

func clock() time.Time { return now }

func resolved(pt entity.PaymentType, fee int64, status entity.OrderStatus, items ...entity.OrderItem) *entity.Order {
	o := entity.NewOrder(pt, buyer, items, fee, now)
	if err := o.Resolve(status, now); err != nil {
		panic(err)
	}
	return o
}

func TestUseCase_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	orderRepo := mocks.NewMockOrderRepository(ctrl)
	lossRepo := mocks.NewMockLossRepository(ctrl)

	yakult := entity.OrderItem{ProductID: 1, Name: "Yakult Original", Qty: 2, Price: 10500}
	light := entity.OrderItem{ProductID: 2, Name: "Yakult Light", Qty: 1, Price: 11000}

	history := []*entity.Order{
		resolved(entity.PaymentQRIS, 200, entity.StatusConfirmed, yakult, light),
		resolved(entity.PaymentCash, 0, entity.StatusConfirmed, light),
		resolved(entity.PaymentQRIS, 200, entity.StatusRejected, yakult),
		resolved(entity.PaymentCash, 0, entity.StatusCancelled, light),
	}
	active := []*entity.Order{entity.NewOrder(entity.PaymentCash, buyer, []entity.OrderItem{yakult}, 0, now)}
	loss, err := entity.NewLoss(5000, "spilled crate", now)
	require.NoError(t, err)

	uow.EXPECT().Orders().Return(orderRepo).Times(2)
	orderRepo.EXPECT().List(gomock.Any(), false).Return(active, nil)
	orderRepo.EXPECT().List(gomock.Any(), true).Return(history, nil)
	uow.EXPECT().Losses().Return(lossRepo)
	lossRepo.EXPECT().List(gomock.Any()).Return([]*entity.Loss{loss}, nil)

	s, err := ledger.NewUseCase(uow, clock).Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ledger.Summary{
		Revenue:   21000 + 11000 + 11000,
		Fees:      200,
		ItemsSold: 4,
		Losses:    5000,
		Net:       43000 + 200 - 5000,
		Active:    1,
		Confirmed: 2,
	}, s)
}

func TestUseCase_AddLoss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	lossRepo := mocks.NewMockLossRepository(ctrl)
	uc := ledger.NewUseCase(uow, clock)

	uow.EXPECT().Losses().Return(lossRepo)
	lossRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	l, err := uc.AddLoss(context.Background(), 1500, "expired stock")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), l.Amount())
	assert.Equal(t, now, l.CreatedAt())

	_, err = uc.AddLoss(context.Background(), -1, "x")
	assert.ErrorIs(t, err, entity.ErrNonPositiveAmount)
}

func TestUseCase_Reset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	boom := errors.New("disk full")
	uow.EXPECT().Reset(gomock.Any()).Return(boom)

	assert.ErrorIs(t, ledger.NewUseCase(uow, clock).Reset(context.Background()), boom)
}
