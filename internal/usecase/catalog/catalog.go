package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

// Storefront is everything the public shop page renders besides products.
type Storefront struct {
	StoreName            string
	WhatsApp             string
	PaymentWindowMinutes int
	QRISFee              int64
	QRISEnabled          bool
	Content              *entity.StoreContent
	Rating               float64
}

type Review struct {
	Name    string
	Email   string
	Phone   string
	Message string
	Rating  int
}

type UseCase struct {
	uow repository.UnitOfWork
	now func() time.Time
}

func NewUseCase(uow repository.UnitOfWork, now func() time.Time) *UseCase {
	return &UseCase{uow: uow, now: now}
}

func (uc *UseCase) Products(ctx context.Context) ([]*entity.Product, error) {
	return uc.uow.Products().List(ctx)
}

func (uc *UseCase) SaveProduct(ctx context.Context, p *entity.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return uc.uow.Products().Save(ctx, p)
}

func (uc *UseCase) DeleteProduct(ctx context.Context, id int64) error {
	return uc.uow.Products().Delete(ctx, id)
}

func (uc *UseCase) Settings(ctx context.Context) (*entity.Settings, error) {
	return uc.uow.Settings().Get(ctx)
}

// SaveSettings stores s after validation. A merchant payload, when given,
// must be a checksummed static QRIS without an amount.
func (uc *UseCase) SaveSettings(ctx context.Context, s *entity.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.QRISPayload = strings.TrimSpace(s.QRISPayload)
	if s.QRISPayload != "" {
		if err := qris.ValidateStatic(s.QRISPayload); err != nil {
			return err
		}
	}
	return uc.uow.Settings().Save(ctx, s)
}

func (uc *UseCase) Content(ctx context.Context) (*entity.StoreContent, error) {
	return uc.uow.Content().Get(ctx)
}

func (uc *UseCase) SaveContent(ctx context.Context, c *entity.StoreContent) error {
	return uc.uow.Content().Save(ctx, c)
}

// AddTestimonial publishes a shopper review and returns it with the updated
// shop rating.
func (uc *UseCase) AddTestimonial(ctx context.Context, r Review) (*entity.Testimonial, float64, error) {
	t, err := entity.NewTestimonial(r.Name, r.Email, r.Phone, r.Message, r.Rating, uc.now())
	if err != nil {
		return nil, 0, err
	}

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	content, err := tx.Content().Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	content.AddTestimonial(t)
	if err := tx.Content().Save(ctx, content); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return &t, content.ShopRating(), nil
}

func (uc *UseCase) Storefront(ctx context.Context) (*Storefront, error) {
	settings, err := uc.uow.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	content, err := uc.uow.Content().Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Storefront{
		StoreName:            settings.StoreName,
		WhatsApp:             settings.WhatsApp,
		PaymentWindowMinutes: settings.PaymentWindowMinutes,
		QRISFee:              settings.QRISFee,
		QRISEnabled:          settings.QRISPayload != "",
		Content:              content,
		Rating:               content.ShopRating(),
	}, nil
}

// EnsureQRISPayload seeds the merchant payload when the stored settings have
// none. It reports whether settings were written.
func (uc *UseCase) EnsureQRISPayload(ctx context.Context, payload string) (bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return false, nil
	}
	if err := qris.ValidateStatic(payload); err != nil {
		return false, err
	}

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	settings, err := tx.Settings().Get(ctx)
	if err != nil {
		return false, err
	}
	if settings.QRISPayload != "" {
		return false, nil
	}

	settings.QRISPayload = payload
	if err := tx.Settings().Save(ctx, settings); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
