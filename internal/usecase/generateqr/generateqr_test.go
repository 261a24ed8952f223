package generateqr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/payment"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository/mocks"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/generateqr"
)

const merchantPayload = "00020101021126570011ID.DANA.WWW011893600915380003780002098000378000303UMI" +
	"51440014ID.CO.QRIS.WWW0215ID10243620012490303UMI5204549953033605802ID" +
	"5910Warr2 Shop6015Kab. Bandung Ba6105402936304BF4C"

var createdAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type recordingGenerator struct {
	content string
}

func (g *recordingGenerator) Generate(content string) ([]byte, error) {
	g.content = content
	return []byte("png"), nil
}

func newOrder(pt entity.PaymentType) *entity.Order {
	customer := entity.Customer{Name: "Sari", WhatsApp: "+62812", Address: "Jl. Merdeka 1"}
	return entity.NewOrder(pt, customer, []entity.OrderItem{{ProductID: 4, Name: "Test Produk", Qty: 1, Price: 100}}, 200, createdAt)
}

func settings() *entity.Settings {
	s := entity.DefaultSettings()
	s.QRISPayload = merchantPayload
	return s
}

func TestGenerateQRUseCase_Execute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	orderRepo := mocks.NewMockOrderRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)
	gen := &recordingGenerator{}

	order := newOrder(entity.PaymentQRIS)
	uc := generateqr.NewUseCase(uow, gen, func() time.Time { return createdAt.Add(time.Minute) })

	uow.EXPECT().Orders().Return(orderRepo)
	orderRepo.EXPECT().FindByID(gomock.Any(), order.ID()).Return(order, nil)
	uow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(settings(), nil)

	resp, err := uc.Execute(context.Background(), generateqr.Request{OrderID: order.ID()})

	require.NoError(t, err)
	assert.Equal(t, []byte("png"), resp.PNG)
	assert.Equal(t, resp.Payload, gen.content)
	assert.Contains(t, resp.Payload, "5303360"+"5403300")
}

func TestGenerateQRUseCase_Execute_Expired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	orderRepo := mocks.NewMockOrderRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)

	order := newOrder(entity.PaymentQRIS)
	uc := generateqr.NewUseCase(uow, &recordingGenerator{}, func() time.Time { return createdAt.Add(time.Hour) })

	uow.EXPECT().Orders().Return(orderRepo)
	orderRepo.EXPECT().FindByID(gomock.Any(), order.ID()).Return(order, nil)
	uow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(settings(), nil)

	_, err := uc.Execute(context.Background(), generateqr.Request{OrderID: order.ID()})
	assert.ErrorIs(t, err, entity.ErrPaymentExpired)
}

func TestGenerateQRUseCase_Execute_Rejects(t *testing.T) {
	closed := newOrder(entity.PaymentQRIS)
	require.NoError(t, closed.Resolve(entity.StatusConfirmed, createdAt))

	tests := []struct {
		name  string
		order *entity.Order
		err   error
	}{
		{name: "cash order", order: newOrder(entity.PaymentCash), err: payment.ErrNotQRIS},
		{name: "resolved order", order: closed, err: entity.ErrOrderClosed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uow := mocks.NewMockUnitOfWork(ctrl)
			orderRepo := mocks.NewMockOrderRepository(ctrl)

			uow.EXPECT().Orders().Return(orderRepo)
			orderRepo.EXPECT().FindByID(gomock.Any(), tc.order.ID()).Return(tc.order, nil)

			uc := generateqr.NewUseCase(uow, &recordingGenerator{}, time.Now)
			_, err := uc.Execute(context.Background(), generateqr.Request{OrderID: tc.order.ID()})
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
