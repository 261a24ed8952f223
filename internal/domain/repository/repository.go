package repository

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
)

var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	List(ctx context.Context) ([]*entity.Product, error)
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	Save(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	// List returns active orders newest first, or history orders most
	// recently resolved first.
	List(ctx context.Context, archived bool) ([]*entity.Order, error)
}

type LossRepository interface {
	Create(ctx context.Context, l *entity.Loss) error
	List(ctx context.Context) ([]*entity.Loss, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, s *entity.Settings) error
}

type ContentRepository interface {
	Get(ctx context.Context) (*entity.StoreContent, error)
	Save(ctx context.Context, c *entity.StoreContent) error
}

type IdempotencyRepository interface {
	Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error)
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
	Lock(ctx context.Context, key string) error
}
