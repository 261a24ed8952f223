package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrLossDescription   = errors.New("loss description is required")
)

type Loss struct {
	id          string
	amount      int64
	description string
	createdAt   time.Time
}

func NewLoss(amount int64, description string, now time.Time) (*Loss, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrLossDescription
	}
	return &Loss{
		id:          fmt.Sprintf("LOSS-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		amount:      amount,
		description: description,
		createdAt:   now,
	}, nil
}

func ReconstructLoss(id string, amount int64, description string, createdAt time.Time) *Loss {
	return &Loss{
		id:          id,
		amount:      amount,
		description: description,
		createdAt:   createdAt,
	}
}

func (l *Loss) ID() string {
	return l.id
}

func (l *Loss) Amount() int64 {
	return l.amount
}

func (l *Loss) Description() string {
	return l.description
}

func (l *Loss) CreatedAt() time.Time {
	return l.createdAt
}
