package checkout_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/payment"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository/mocks"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/checkout"
)

const merchantPayload = "00020101021126570011ID.DANA.WWW011893600915380003780002098000378000303UMI" +
	"51440014ID.CO.QRIS.WWW0215ID10243620012490303UMI5204549953033605802ID" +
	"5910Warr2 Shop6015Kab. Bandung Ba6105402936304BF4C"

var (
	fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	customer = entity.Customer{Name: "Sari", WhatsApp: "+628123456789", Address: "Jl. Merdeka 1"}
)

func clock() time.Time { return fixedNow }

func qrisSettings() *entity.Settings {
	s := entity.DefaultSettings()
	s.QRISPayload = merchantPayload
	return s
}

func TestCheckoutUseCase_Execute_QRIS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	txUow := mocks.NewMockUnitOfWork(ctrl)
	idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)
	orderRepo := mocks.NewMockOrderRepository(ctrl)

	uc := checkout.NewUseCase(uow, clock)

	uow.EXPECT().Idempotency().Return(idempotencyRepo)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-1").Return(nil, nil)

	uow.EXPECT().Begin(gomock.Any()).Return(txUow, nil)
	txUow.EXPECT().Rollback(gomock.Any()).Return(nil)

	txUow.EXPECT().Idempotency().Return(idempotencyRepo).Times(3)
	idempotencyRepo.EXPECT().Lock(gomock.Any(), "cart-1").Return(nil)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-1").Return(nil, nil)

	txUow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(qrisSettings(), nil)

	txUow.EXPECT().Products().Return(productRepo)
	productRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(entity.NewProduct(1, "Yakult Original", "", 10500, ""), nil)
	productRepo.EXPECT().FindByID(gomock.Any(), int64(4)).
		Return(entity.NewProduct(4, "Test Produk", "", 100, ""), nil)

	var created *entity.Order
	txUow.EXPECT().Orders().Return(orderRepo)
	orderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o *entity.Order) error {
		created = o
		return nil
	})
	idempotencyRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, "cart-1", r.Key())
		assert.Equal(t, created.ID(), r.OrderID())
		return nil
	})
	txUow.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := uc.Execute(context.Background(), checkout.Request{
		IdempotencyKey: "cart-1",
		PaymentType:    entity.PaymentQRIS,
		Customer:       customer,
		Items: []checkout.Item{
			{ProductID: 1, Qty: 1},
			{ProductID: 4, Qty: 2},
			{ProductID: 1, Qty: 1},
		},
	})

	require.NoError(t, err)
	assert.False(t, resp.Replayed)
	assert.Equal(t, int64(21000+200+200), resp.Order.Total())
	assert.Equal(t, []entity.OrderItem{
		{ProductID: 1, Name: "Yakult Original", Qty: 2, Price: 10500},
		{ProductID: 4, Name: "Test Produk", Qty: 2, Price: 100},
	}, resp.Order.Items())

	require.NotNil(t, resp.Payment)
	assert.Contains(t, resp.Payment.Payload, "5303360"+"540521400")
	assert.True(t, qris.VerifyChecksum(resp.Payment.Payload))
	assert.Equal(t, fixedNow.Add(10*time.Minute), resp.Payment.ExpiresAt)
}

func TestCheckoutUseCase_Execute_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
	orderRepo := mocks.NewMockOrderRepository(ctrl)

	uc := checkout.NewUseCase(uow, clock)

	existing := entity.NewOrder(entity.PaymentCash, customer, []entity.OrderItem{{ProductID: 1, Qty: 1, Price: 10500}}, 0, fixedNow)
	record := entity.ReconstructIdempotencyRecord("cart-2", existing.ID(), fixedNow)

	uow.EXPECT().Idempotency().Return(idempotencyRepo)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-2").Return(record, nil)
	uow.EXPECT().Orders().Return(orderRepo)
	orderRepo.EXPECT().FindByID(gomock.Any(), existing.ID()).Return(existing, nil)

	resp, err := uc.Execute(context.Background(), checkout.Request{
		IdempotencyKey: "cart-2",
		PaymentType:    entity.PaymentCash,
		Customer:       customer,
		Items:          []checkout.Item{{ProductID: 1, Qty: 1}},
	})

	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Same(t, existing, resp.Order)
	assert.Nil(t, resp.Payment)
}

func TestCheckoutUseCase_Execute_UnknownProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	txUow := mocks.NewMockUnitOfWork(ctrl)
	idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	uc := checkout.NewUseCase(uow, clock)

	uow.EXPECT().Idempotency().Return(idempotencyRepo)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-3").Return(nil, nil)

	uow.EXPECT().Begin(gomock.Any()).Return(txUow, nil)
	txUow.EXPECT().Rollback(gomock.Any()).Return(nil)

	txUow.EXPECT().Idempotency().Return(idempotencyRepo).Times(2)
	idempotencyRepo.EXPECT().Lock(gomock.Any(), "cart-3").Return(nil)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-3").Return(nil, nil)

	txUow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(entity.DefaultSettings(), nil)

	txUow.EXPECT().Products().Return(productRepo)
	productRepo.EXPECT().FindByID(gomock.Any(), int64(99)).Return(nil, repository.ErrNotFound)

	_, err := uc.Execute(context.Background(), checkout.Request{
		IdempotencyKey: "cart-3",
		PaymentType:    entity.PaymentCash,
		Customer:       customer,
		Items:          []checkout.Item{{ProductID: 99, Qty: 1}},
	})

	assert.ErrorIs(t, err, checkout.ErrUnknownProduct)
}

func TestCheckoutUseCase_Execute_QRISNotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	txUow := mocks.NewMockUnitOfWork(ctrl)
	idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	uc := checkout.NewUseCase(uow, clock)

	uow.EXPECT().Idempotency().Return(idempotencyRepo)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-4").Return(nil, nil)

	uow.EXPECT().Begin(gomock.Any()).Return(txUow, nil)
	txUow.EXPECT().Rollback(gomock.Any()).Return(nil)

	txUow.EXPECT().Idempotency().Return(idempotencyRepo).Times(2)
	idempotencyRepo.EXPECT().Lock(gomock.Any(), "cart-4").Return(nil)
	idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-4").Return(nil, nil)

	txUow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(entity.DefaultSettings(), nil)

	txUow.EXPECT().Products().Return(productRepo)
	productRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(entity.NewProduct(1, "Yakult Original", "", 10500, ""), nil)

	_, err := uc.Execute(context.Background(), checkout.Request{
		IdempotencyKey: "cart-4",
		PaymentType:    entity.PaymentQRIS,
		Customer:       customer,
		Items:          []checkout.Item{{ProductID: 1, Qty: 1}},
	})

	assert.ErrorIs(t, err, payment.ErrQRISNotConfigured)
}

func TestCheckoutUseCase_Execute_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := checkout.NewUseCase(mocks.NewMockUnitOfWork(ctrl), clock)

	valid := checkout.Request{
		IdempotencyKey: "k",
		PaymentType:    entity.PaymentCash,
		Customer:       customer,
		Items:          []checkout.Item{{ProductID: 1, Qty: 1}},
	}

	tests := []struct {
		name   string
		mutate func(r *checkout.Request)
		err    error
	}{
		{name: "missing key", mutate: func(r *checkout.Request) { r.IdempotencyKey = "" }, err: checkout.ErrIdempotencyKeyRequired},
		{name: "bad payment type", mutate: func(r *checkout.Request) { r.PaymentType = "card" }, err: entity.ErrInvalidPaymentType},
		{name: "incomplete customer", mutate: func(r *checkout.Request) { r.Customer.WhatsApp = "" }, err: entity.ErrCustomerIncomplete},
		{name: "empty cart", mutate: func(r *checkout.Request) { r.Items = nil }, err: checkout.ErrEmptyCart},
		{name: "zero quantity", mutate: func(r *checkout.Request) { r.Items = []checkout.Item{{ProductID: 1}} }, err: checkout.ErrInvalidQuantity},
		{name: "quantity over limit", mutate: func(r *checkout.Request) {
			r.Items = []checkout.Item{{ProductID: 1, Qty: checkout.MaxQuantity + 1}}
		}, err: checkout.ErrQuantityTooLarge},
		{name: "huge quantity", mutate: func(r *checkout.Request) {
			r.Items = []checkout.Item{{ProductID: 1, Qty: math.MaxInt64 / 10000}}
		}, err: checkout.ErrQuantityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

// expectPricing sets up a fresh checkout that reaches the catalog lookup and
// then rolls back.
func expectPricing(ctrl *gomock.Controller, key string, products map[int64]*entity.Product) *mocks.MockUnitOfWork {
	uow := mocks.NewMockUnitOfWork(ctrl)
	txUow := mocks.NewMockUnitOfWork(ctrl)
	idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
	settingsRepo := mocks.NewMockSettingsRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	uow.EXPECT().Idempotency().Return(idempotencyRepo)
	idempotencyRepo.EXPECT().Find(gomock.Any(), key).Return(nil, nil)

	uow.EXPECT().Begin(gomock.Any()).Return(txUow, nil)
	txUow.EXPECT().Rollback(gomock.Any()).Return(nil)

	txUow.EXPECT().Idempotency().Return(idempotencyRepo).Times(2)
	idempotencyRepo.EXPECT().Lock(gomock.Any(), key).Return(nil)
	idempotencyRepo.EXPECT().Find(gomock.Any(), key).Return(nil, nil)

	txUow.EXPECT().Settings().Return(settingsRepo)
	settingsRepo.EXPECT().Get(gomock.Any()).Return(entity.DefaultSettings(), nil)

	txUow.EXPECT().Products().Return(productRepo)
	for id, p := range products {
		productRepo.EXPECT().FindByID(gomock.Any(), id).Return(p, nil)
	}
	return uow
}

func TestCheckoutUseCase_Execute_MergedQuantityOverLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := expectPricing(ctrl, "cart-5", map[int64]*entity.Product{
		1: entity.NewProduct(1, "Yakult Original", "", 15000, ""),
	})

	_, err := checkout.NewUseCase(uow, clock).Execute(context.Background(), checkout.Request{
		IdempotencyKey: "cart-5",
		PaymentType:    entity.PaymentCash,
		Customer:       customer,
		Items:          []checkout.Item{{ProductID: 1, Qty: 6000}, {ProductID: 1, Qty: 4000}},
	})

	assert.ErrorIs(t, err, checkout.ErrQuantityTooLarge)
}

func TestCheckoutUseCase_Execute_TotalOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		qty   int
	}{
		{name: "overflow", price: math.MaxInt64 / 2, qty: 3},
		{name: "free cart", price: 0, qty: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uow := expectPricing(ctrl, "cart-6", map[int64]*entity.Product{
				1: entity.NewProduct(1, "Gold crate", "", tc.price, ""),
			})

			_, err := checkout.NewUseCase(uow, clock).Execute(context.Background(), checkout.Request{
				IdempotencyKey: "cart-6",
				PaymentType:    entity.PaymentCash,
				Customer:       customer,
				Items:          []checkout.Item{{ProductID: 1, Qty: tc.qty}},
			})

			assert.ErrorIs(t, err, checkout.ErrTotalOutOfRange)
		})
	}
}

func TestCheckoutUseCase_Execute_ReplayQRIS(t *testing.T) {
	cancelled := func() *entity.Order {
		o := entity.NewOrder(entity.PaymentQRIS, customer, []entity.OrderItem{{ProductID: 1, Qty: 1, Price: 10500}}, 200, fixedNow)
		if err := o.Cancel(fixedNow); err != nil {
			panic(err)
		}
		return o
	}

	tests := []struct {
		name        string
		order       *entity.Order
		at          time.Time
		loadsConfig bool
		wantPayment bool
	}{
		{
			name:        "pending within window",
			order:       entity.NewOrder(entity.PaymentQRIS, customer, []entity.OrderItem{{ProductID: 1, Qty: 1, Price: 10500}}, 200, fixedNow),
			at:          fixedNow.Add(5 * time.Minute),
			loadsConfig: true,
			wantPayment: true,
		},
		{
			name:        "pending after window",
			order:       entity.NewOrder(entity.PaymentQRIS, customer, []entity.OrderItem{{ProductID: 1, Qty: 1, Price: 10500}}, 200, fixedNow),
			at:          fixedNow.Add(time.Hour),
			loadsConfig: true,
		},
		{
			name:  "cancelled",
			order: cancelled(),
			at:    fixedNow.Add(time.Hour),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uow := mocks.NewMockUnitOfWork(ctrl)
			idempotencyRepo := mocks.NewMockIdempotencyRepository(ctrl)
			orderRepo := mocks.NewMockOrderRepository(ctrl)
			settingsRepo := mocks.NewMockSettingsRepository(ctrl)

			record := entity.ReconstructIdempotencyRecord("cart-7", tc.order.ID(), fixedNow)
			uow.EXPECT().Idempotency().Return(idempotencyRepo)
			idempotencyRepo.EXPECT().Find(gomock.Any(), "cart-7").Return(record, nil)
			uow.EXPECT().Orders().Return(orderRepo)
			orderRepo.EXPECT().FindByID(gomock.Any(), tc.order.ID()).Return(tc.order, nil)
			if tc.loadsConfig {
				uow.EXPECT().Settings().Return(settingsRepo)
				settingsRepo.EXPECT().Get(gomock.Any()).Return(qrisSettings(), nil)
			}

			at := tc.at
			uc := checkout.NewUseCase(uow, func() time.Time { return at })
			resp, err := uc.Execute(context.Background(), checkout.Request{
				IdempotencyKey: "cart-7",
				PaymentType:    entity.PaymentQRIS,
				Customer:       customer,
				Items:          []checkout.Item{{ProductID: 1, Qty: 1}},
			})

			require.NoError(t, err)
			assert.True(t, resp.Replayed)
			assert.Same(t, tc.order, resp.Order)
			if tc.wantPayment {
				require.NotNil(t, resp.Payment)
				assert.True(t, qris.VerifyChecksum(resp.Payment.Payload))
			} else {
				assert.Nil(t, resp.Payment)
			}
		})
	}
}
