package bolt

import (
	"time"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
)

type productRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"img"`
}

func toProductRecord(p *entity.Product) productRecord {
	return productRecord{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		ImageURL:    p.ImageURL(),
	}
}

func (r productRecord) toEntity() *entity.Product {
	return entity.NewProduct(r.ID, r.Name, r.Description, r.Price, r.ImageURL)
}

type orderRecord struct {
	ID         string             `json:"id"`
	Type       entity.PaymentType `json:"type"`
	Customer   entity.Customer    `json:"customer"`
	Items      []entity.OrderItem `json:"items"`
	Total      int64              `json:"total"`
	Fee        int64              `json:"fee"`
	Status     entity.OrderStatus `json:"status"`
	ProofURL   string             `json:"proofUrl,omitempty"`
	Archived   bool               `json:"archived"`
	CreatedAt  time.Time          `json:"created_at"`
	ResolvedAt time.Time          `json:"resolved_at"`
}

func toOrderRecord(o *entity.Order) orderRecord {
	return orderRecord{
		ID:         o.ID(),
		Type:       o.PaymentType(),
		Customer:   o.Customer(),
		Items:      o.Items(),
		Total:      o.Total(),
		Fee:        o.Fee(),
		Status:     o.Status(),
		ProofURL:   o.ProofURL(),
		Archived:   o.Archived(),
		CreatedAt:  o.CreatedAt(),
		ResolvedAt: o.ResolvedAt(),
	}
}

func (r orderRecord) toEntity() *entity.Order {
	return entity.ReconstructOrder(
		r.ID, r.Type, r.Customer, r.Items, r.Total, r.Fee,
		r.Status, r.ProofURL, r.Archived, r.CreatedAt, r.ResolvedAt,
	)
}

type lossRecord struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLossRecord(l *entity.Loss) lossRecord {
	return lossRecord{ID: l.ID(), Amount: l.Amount(), Description: l.Description(), CreatedAt: l.CreatedAt()}
}

func (r lossRecord) toEntity() *entity.Loss {
	return entity.ReconstructLoss(r.ID, r.Amount, r.Description, r.CreatedAt)
}

type idempotencyRecord struct {
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}
