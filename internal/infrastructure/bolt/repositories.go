package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
)

const (
	productsBucket    = "products"
	ordersBucket      = "orders"
	lossesBucket      = "losses"
	metaBucket        = "meta"
	idempotencyBucket = "idempotency"

	settingsKey = "settings"
	contentKey  = "content"

	openTimeout = time.Second
)

var buckets = []string{productsBucket, ordersBucket, lossesBucket, metaBucket, idempotencyBucket}

// Open opens (creating if needed) the single-file store at path.
func Open(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	if err := db.Update(createBuckets); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range buckets {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return nil
}

type UnitOfWork struct {
	db *bbolt.DB
	tx *bbolt.Tx
}

func NewUnitOfWork(db *bbolt.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Begin opens a writable transaction. bbolt admits one writer at a time, so
// everything done through the returned unit is serialized against other
// writers until Commit or Rollback.
func (u *UnitOfWork) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := u.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{db: u.db, tx: tx}, nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit()
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback()
}

func (u *UnitOfWork) Reset(_ context.Context) error {
	return u.update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
		}
		return createBuckets(tx)
	})
}

func (u *UnitOfWork) Products() repository.ProductRepository {
	return &ProductRepo{uow: u}
}

func (u *UnitOfWork) Orders() repository.OrderRepository {
	return &OrderRepo{uow: u}
}

func (u *UnitOfWork) Losses() repository.LossRepository {
	return &LossRepo{uow: u}
}

func (u *UnitOfWork) Settings() repository.SettingsRepository {
	return &SettingsRepo{uow: u}
}

func (u *UnitOfWork) Content() repository.ContentRepository {
	return &ContentRepo{uow: u}
}

func (u *UnitOfWork) Idempotency() repository.IdempotencyRepository {
	return &IdempotencyRepo{uow: u}
}

func (u *UnitOfWork) view(fn func(tx *bbolt.Tx) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	return u.db.View(fn)
}

func (u *UnitOfWork) update(fn func(tx *bbolt.Tx) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	return u.db.Update(fn)
}

func getJSON(tx *bbolt.Tx, bucket, key string, v any) (bool, error) {
	raw := tx.Bucket([]byte(bucket)).Get([]byte(key))
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func putJSON(tx *bbolt.Tx, bucket string, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(bucket)).Put(key, raw)
}

type ProductRepo struct {
	uow *UnitOfWork
}

func productKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	var products []*entity.Product
	err := r.uow.view(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(productsBucket)).ForEach(func(_, v []byte) error {
			var rec productRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			products = append(products, rec.toEntity())
			return nil
		})
	})
	return products, err
}

func (r *ProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	var rec productRecord
	err := r.uow.view(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(productsBucket)).Get(productKey(id))
		if raw == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toEntity(), nil
}

func (r *ProductRepo) Save(_ context.Context, p *entity.Product) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		return putJSON(tx, productsBucket, productKey(p.ID()), toProductRecord(p))
	})
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(productsBucket))
		if b.Get(productKey(id)) == nil {
			return repository.ErrNotFound
		}
		return b.Delete(productKey(id))
	})
}

type OrderRepo struct {
	uow *UnitOfWork
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(ordersBucket)).Get([]byte(o.ID())) != nil {
			return fmt.Errorf("order %s already exists", o.ID())
		}
		return putJSON(tx, ordersBucket, []byte(o.ID()), toOrderRecord(o))
	})
}

func (r *OrderRepo) FindByID(_ context.Context, id string) (*entity.Order, error) {
	var rec orderRecord
	err := r.uow.view(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx, ordersBucket, id, &rec)
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toEntity(), nil
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(ordersBucket)).Get([]byte(o.ID())) == nil {
			return repository.ErrNotFound
		}
		return putJSON(tx, ordersBucket, []byte(o.ID()), toOrderRecord(o))
	})
}

func (r *OrderRepo) List(_ context.Context, archived bool) ([]*entity.Order, error) {
	var recs []orderRecord
	err := r.uow.view(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(ordersBucket)).ForEach(func(_, v []byte) error {
			var rec orderRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.Archived == archived {
				recs = append(recs, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if archived {
			return recs[i].ResolvedAt.After(recs[j].ResolvedAt)
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	orders := make([]*entity.Order, 0, len(recs))
	for _, rec := range recs {
		orders = append(orders, rec.toEntity())
	}
	return orders, nil
}

type LossRepo struct {
	uow *UnitOfWork
}

func (r *LossRepo) Create(_ context.Context, l *entity.Loss) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		return putJSON(tx, lossesBucket, []byte(l.ID()), toLossRecord(l))
	})
}

func (r *LossRepo) List(_ context.Context) ([]*entity.Loss, error) {
	var recs []lossRecord
	err := r.uow.view(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(lossesBucket)).ForEach(func(_, v []byte) error {
			var rec lossRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })

	losses := make([]*entity.Loss, 0, len(recs))
	for _, rec := range recs {
		losses = append(losses, rec.toEntity())
	}
	return losses, nil
}

type SettingsRepo struct {
	uow *UnitOfWork
}

func (r *SettingsRepo) Get(_ context.Context) (*entity.Settings, error) {
	settings := entity.DefaultSettings()
	err := r.uow.view(func(tx *bbolt.Tx) error {
		_, err := getJSON(tx, metaBucket, settingsKey, settings)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *SettingsRepo) Save(_ context.Context, s *entity.Settings) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		return putJSON(tx, metaBucket, []byte(settingsKey), s)
	})
}

type ContentRepo struct {
	uow *UnitOfWork
}

func (r *ContentRepo) Get(_ context.Context) (*entity.StoreContent, error) {
	content := &entity.StoreContent{}
	err := r.uow.view(func(tx *bbolt.Tx) error {
		_, err := getJSON(tx, metaBucket, contentKey, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (r *ContentRepo) Save(_ context.Context, c *entity.StoreContent) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		return putJSON(tx, metaBucket, []byte(contentKey), c)
	})
}

type IdempotencyRepo struct {
	uow *UnitOfWork
}

func (r *IdempotencyRepo) Find(_ context.Context, key string) (*entity.IdempotencyRecord, error) {
	var rec idempotencyRecord
	var found bool
	err := r.uow.view(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, idempotencyBucket, key, &rec)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return entity.ReconstructIdempotencyRecord(key, rec.OrderID, rec.CreatedAt), nil
}

func (r *IdempotencyRepo) Save(_ context.Context, record *entity.IdempotencyRecord) error {
	return r.uow.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(idempotencyBucket))
		if b.Get([]byte(record.Key())) != nil {
			return nil
		}
		return putJSON(tx, idempotencyBucket, []byte(record.Key()), idempotencyRecord{
			OrderID:   record.OrderID(),
			CreatedAt: record.CreatedAt(),
		})
	})
}

// Lock is a no-op: a writable bolt transaction already excludes every other
// writer.
func (r *IdempotencyRepo) Lock(_ context.Context, _ string) error {
	return nil
}
