package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/payment"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

var (
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrUnknownProduct         = errors.New("unknown product")
	ErrQuantityTooLarge       = errors.New("quantity exceeds the per-product limit")
	ErrTotalOutOfRange        = errors.New("order total is out of range")
)

// MaxQuantity bounds the units of one product in a cart, after merging
// repeated lines.
const MaxQuantity = 9999

type Item struct {
	ProductID int64
	Qty       int
}

type Request struct {
	IdempotencyKey string
	PaymentType    entity.PaymentType
	Customer       entity.Customer
	Items          []Item
}

type Response struct {
	Order   *entity.Order
	Payment *payment.Payment
	// Replayed is set when the idempotency key matched an earlier checkout.
	Replayed bool
}

type UseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewUseCase(uow repository.UnitOfWork, now func() time.Time) *UseCase {
	return &UseCase{uow: uow, now: now}
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	cached, err := uc.uow.Idempotency().Find(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.replay(ctx, uc.uow, cached)
	}

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.Idempotency().Lock(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	cached, err = tx.Idempotency().Find(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.replay(ctx, tx, cached)
	}

	settings, err := tx.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}

	items, err := resolveItems(ctx, tx.Products(), req.Items)
	if err != nil {
		return nil, err
	}

	fee := settings.FeeFor(req.PaymentType)
	if err := checkTotal(items, fee); err != nil {
		return nil, err
	}

	now := uc.now()
	order := entity.NewOrder(req.PaymentType, req.Customer, items, fee, now)

	var pay *payment.Payment
	if order.PaymentType() == entity.PaymentQRIS {
		if pay, err = payment.ForOrder(order, settings); err != nil {
			return nil, err
		}
	}

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	if err := tx.Idempotency().Save(ctx, entity.NewIdempotencyRecord(req.IdempotencyKey, order.ID(), now)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &Response{Order: order, Payment: pay}, nil
}

func (uc *UseCase) replay(ctx context.Context, uow repository.UnitOfWork, record *entity.IdempotencyRecord) (*Response, error) {
	order, err := uow.Orders().FindByID(ctx, record.OrderID())
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", record.Key(), err)
	}

	// A payment is only reissued while the order can still be paid.
	resp := &Response{Order: order, Replayed: true}
	if order.PaymentType() != entity.PaymentQRIS || order.Status() != entity.StatusPending || order.Archived() {
		return resp, nil
	}

	settings, err := uow.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	if order.Expired(uc.now(), settings.PaymentWindow()) {
		return resp, nil
	}
	if resp.Payment, err = payment.ForOrder(order, settings); err != nil {
		return nil, err
	}
	return resp, nil
}

func validate(req Request) error {
	if req.IdempotencyKey == "" {
		return ErrIdempotencyKeyRequired
	}
	if !req.PaymentType.Valid() {
		return entity.ErrInvalidPaymentType
	}
	if err := req.Customer.Validate(); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return ErrInvalidQuantity
		}
		if it.Qty > MaxQuantity {
			return ErrQuantityTooLarge
		}
	}
	return nil
}

// resolveItems prices the cart from the catalog, merging repeated product IDs
// in first-seen order.
func resolveItems(ctx context.Context, products repository.ProductRepository, cart []Item) ([]entity.OrderItem, error) {
	index := make(map[int64]int, len(cart))
	items := make([]entity.OrderItem, 0, len(cart))

	for _, c := range cart {
		if i, ok := index[c.ProductID]; ok {
			if items[i].Qty > MaxQuantity-c.Qty {
				return nil, ErrQuantityTooLarge
			}
			items[i].Qty += c.Qty
			continue
		}

		p, err := products.FindByID(ctx, c.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, c.ProductID)
		}
		if err != nil {
			return nil, err
		}

		index[c.ProductID] = len(items)
		items = append(items, entity.OrderItem{
			ProductID: p.ID(),
			Name:      p.Name(),
			Qty:       c.Qty,
			Price:     p.Price(),
		})
	}
	return items, nil
}

// checkTotal rejects carts whose total would overflow or is not positive.
func checkTotal(items []entity.OrderItem, fee int64) error {
	total := fee
	for _, it := range items {
		qty := int64(it.Qty)
		if it.Price > (math.MaxInt64-total)/qty {
			return ErrTotalOutOfRange
		}
		total += it.Price * qty
	}
	if total <= 0 {
		return ErrTotalOutOfRange
	}
	return nil
}
