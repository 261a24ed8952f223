package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/payment"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/checkout"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/order"
)

var (
	errInvalidJSON  = errors.New("invalid json")
	errBodyTooLarge = errors.New("request body too large")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errInvalidJSON
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrPaymentExpired):
		return http.StatusGone
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrOrderClosed),
		errors.Is(err, payment.ErrNotQRIS):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, payment.ErrQRISNotConfigured),
		errors.Is(err, payment.ErrPaymentUnavailable),
		errors.Is(err, qris.ErrMalformedField),
		errors.Is(err, qris.ErrMissingChecksum),
		errors.Is(err, qris.ErrChecksumMismatch),
		errors.Is(err, qris.ErrNotStatic),
		errors.Is(err, qris.ErrAmountPresent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errInvalidJSON),
		errors.Is(err, checkout.ErrIdempotencyKeyRequired),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrQuantityTooLarge),
		errors.Is(err, checkout.ErrTotalOutOfRange),
		errors.Is(err, order.ErrProofRequired),
		errors.Is(err, entity.ErrInvalidPaymentType),
		errors.Is(err, entity.ErrCustomerIncomplete),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrProductName),
		errors.Is(err, entity.ErrNegativePrice),
		errors.Is(err, entity.ErrPaymentWindow),
		errors.Is(err, entity.ErrNegativeFee),
		errors.Is(err, entity.ErrNonPositiveAmount),
		errors.Is(err, entity.ErrLossDescription),
		errors.Is(err, entity.ErrTestimonialIncomplete),
		errors.Is(err, entity.ErrTestimonialRating):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the cause of 5xx responses from the client and logs it
// instead.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

type productResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"img"`
}

func toProductResponse(p *entity.Product) productResponse {
	return productResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		ImageURL:    p.ImageURL(),
	}
}

type orderResponse struct {
	ID         string             `json:"id"`
	Type       entity.PaymentType `json:"type"`
	Customer   entity.Customer    `json:"customer"`
	Items      []entity.OrderItem `json:"items"`
	Total      int64              `json:"total"`
	Fee        int64              `json:"fee"`
	Status     entity.OrderStatus `json:"status"`
	ProofURL   string             `json:"proofUrl,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
	Expired    bool               `json:"expired,omitempty"`
}

func toOrderResponse(o *entity.Order) orderResponse {
	items := o.Items()
	if items == nil {
		items = []entity.OrderItem{}
	}
	resp := orderResponse{
		ID:        o.ID(),
		Type:      o.PaymentType(),
		Customer:  o.Customer(),
		Items:     items,
		Total:     o.Total(),
		Fee:       o.Fee(),
		Status:    o.Status(),
		ProofURL:  o.ProofURL(),
		CreatedAt: o.CreatedAt(),
	}
	if t := o.ResolvedAt(); !t.IsZero() {
		resp.ResolvedAt = &t
	}
	return resp
}

func toOrderResponses(orders []*entity.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type lossResponse struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLossResponse(l *entity.Loss) lossResponse {
	return lossResponse{ID: l.ID(), Amount: l.Amount(), Description: l.Description(), CreatedAt: l.CreatedAt()}
}
