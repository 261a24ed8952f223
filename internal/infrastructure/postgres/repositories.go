package postgres

import (
	"context"
	_ "embed"
	"errors"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

//go:embed schema.sql
var schema string

const (
	settingsDocument = "settings"
	contentDocument  = "content"
)

// EnsureSchema creates any missing tables. It is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{pool: u.pool, tx: tx}, nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}

func (u *UnitOfWork) Reset(ctx context.Context) error {
	_, err := u.q().Exec(ctx,
		`TRUNCATE products, orders, losses, store_documents, idempotency_keys`,
	)
	return err
}

func (u *UnitOfWork) q() querier {
	if u.tx != nil {
		return u.tx
	}
	return u.pool
}

func (u *UnitOfWork) Products() repository.ProductRepository {
	return &ProductRepo{q: u.q()}
}

func (u *UnitOfWork) Orders() repository.OrderRepository {
	return &OrderRepo{q: u.q()}
}

func (u *UnitOfWork) Losses() repository.LossRepository {
	return &LossRepo{q: u.q()}
}

func (u *UnitOfWork) Settings() repository.SettingsRepository {
	return &SettingsRepo{q: u.q()}
}

func (u *UnitOfWork) Content() repository.ContentRepository {
	return &ContentRepo{q: u.q()}
}

func (u *UnitOfWork) Idempotency() repository.IdempotencyRepository {
	return &IdempotencyRepo{q: u.q()}
}

type ProductRepo struct {
	q querier
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, description, price, image_url FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT id, name, description, price, image_url FROM products WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		id, price            int64
		name, desc, imageURL string
	)
	if err := row.Scan(&id, &name, &desc, &price, &imageURL); err != nil {
		return nil, err
	}
	return entity.NewProduct(id, name, desc, price, imageURL), nil
}

func (r *ProductRepo) Save(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO products (id, name, description, price, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   description = EXCLUDED.description,
		   price = EXCLUDED.price,
		   image_url = EXCLUDED.image_url`,
		p.ID(), p.Name(), p.Description(), p.Price(), p.ImageURL(),
	)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type OrderRepo struct {
	q querier
}

const orderColumns = `id, payment_type, customer, items, total, fee, status, proof_url, archived, created_at, resolved_at`

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	items := o.Items()
	if items == nil {
		items = []entity.OrderItem{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID(), string(o.PaymentType()), o.Customer(), items, o.Total(), o.Fee(),
		string(o.Status()), o.ProofURL(), o.Archived(), o.CreatedAt(), nullableTime(o.ResolvedAt()),
	)
	return err
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return o, err
}

func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, proof_url = $3, archived = $4, resolved_at = $5
		 WHERE id = $1`,
		o.ID(), string(o.Status()), o.ProofURL(), o.Archived(), nullableTime(o.ResolvedAt()),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, archived bool) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE archived = $1 ORDER BY created_at DESC`
	if archived {
		query = `SELECT ` + orderColumns + ` FROM orders WHERE archived = $1 ORDER BY resolved_at DESC`
	}

	rows, err := r.q.Query(ctx, query, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		id, paymentType, status, proofURL string
		customer                          entity.Customer
		items                             []entity.OrderItem
		total, fee                        int64
		archived                          bool
		createdAt                         time.Time
		resolvedAt                        *time.Time
	)
	err := row.Scan(&id, &paymentType, &customer, &items, &total, &fee,
		&status, &proofURL, &archived, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	var resolved time.Time
	if resolvedAt != nil {
		resolved = *resolvedAt
	}
	return entity.ReconstructOrder(
		id, entity.PaymentType(paymentType), customer, items, total, fee,
		entity.OrderStatus(status), proofURL, archived, createdAt, resolved,
	), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type LossRepo struct {
	q querier
}

func (r *LossRepo) Create(ctx context.Context, l *entity.Loss) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO losses (id, amount, description, created_at) VALUES ($1, $2, $3, $4)`,
		l.ID(), l.Amount(), l.Description(), l.CreatedAt(),
	)
	return err
}

func (r *LossRepo) List(ctx context.Context) ([]*entity.Loss, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, amount, description, created_at FROM losses ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var losses []*entity.Loss
	for rows.Next() {
		var (
			id, desc  string
			amount    int64
			createdAt time.Time
		)
		if err := rows.Scan(&id, &amount, &desc, &createdAt); err != nil {
			return nil, err
		}
		losses = append(losses, entity.ReconstructLoss(id, amount, desc, createdAt))
	}
	return losses, rows.Err()
}

func getDocument(ctx context.Context, q querier, name string, v any) error {
	err := q.QueryRow(ctx, `SELECT body FROM store_documents WHERE name = $1`, name).Scan(v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func putDocument(ctx context.Context, q querier, name string, v any) error {
	_, err := q.Exec(ctx,
		`INSERT INTO store_documents (name, body) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`,
		name, v,
	)
	return err
}

type SettingsRepo struct {
	q querier
}

func (r *SettingsRepo) Get(ctx context.Context) (*entity.Settings, error) {
	settings := entity.DefaultSettings()
	if err := getDocument(ctx, r.q, settingsDocument, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s *entity.Settings) error {
	return putDocument(ctx, r.q, settingsDocument, s)
}

type ContentRepo struct {
	q querier
}

func (r *ContentRepo) Get(ctx context.Context) (*entity.StoreContent, error) {
	content := &entity.StoreContent{}
	if err := getDocument(ctx, r.q, contentDocument, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (r *ContentRepo) Save(ctx context.Context, c *entity.StoreContent) error {
	return putDocument(ctx, r.q, contentDocument, c)
}

type IdempotencyRepo struct {
	q querier
}

func (r *IdempotencyRepo) Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error) {
	var (
		orderID   string
		createdAt time.Time
	)
	err := r.q.QueryRow(ctx,
		`SELECT order_id, created_at FROM idempotency_keys WHERE key = $1`,
		key,
	).Scan(&orderID, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity.ReconstructIdempotencyRecord(key, orderID, createdAt), nil
}

func (r *IdempotencyRepo) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO idempotency_keys (key, order_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO NOTHING`,
		record.Key(), record.OrderID(), record.CreatedAt(),
	)
	return err
}

// Lock takes a transaction-scoped advisory lock on the key, so concurrent
// checkouts with the same key queue behind the first one.
func (r *IdempotencyRepo) Lock(ctx context.Context, key string) error {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}
