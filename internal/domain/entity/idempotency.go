package entity

import "time"

type IdempotencyRecord struct {
	key       string
	orderID   string
	createdAt time.Time
}

func NewIdempotencyRecord(key, orderID string, now time.Time) *IdempotencyRecord {
	return &IdempotencyRecord{
		key:       key,
		orderID:   orderID,
		createdAt: now,
	}
}

func ReconstructIdempotencyRecord(key, orderID string, createdAt time.Time) *IdempotencyRecord {
	return &IdempotencyRecord{
		key:       key,
		orderID:   orderID,
		createdAt: createdAt,
	}
}

func (r *IdempotencyRecord) Key() string {
	return r.key
}

func (r *IdempotencyRecord) OrderID() string {
	return r.orderID
}

func (r *IdempotencyRecord) CreatedAt() time.Time {
	return r.createdAt
}
