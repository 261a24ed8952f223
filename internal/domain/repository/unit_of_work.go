package repository

//go:generate mockgen -source=unit_of_work.go -destination=mocks/unit_of_work_mock.go -package=mocks

import "context"

type UnitOfWork interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Reset wipes every stored record.
	Reset(ctx context.Context) error

	Products() ProductRepository
	Orders() OrderRepository
	Losses() LossRepository
	Settings() SettingsRepository
	Content() ContentRepository
	Idempotency() IdempotencyRepository
}
