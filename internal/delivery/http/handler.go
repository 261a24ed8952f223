package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/catalog"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/checkout"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/generateqr"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/ledger"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/order"
)

// Proofs arrive as data URLs of phone photos.
const maxProofBytes = 8 << 20

type Handler struct {
	checkoutUC   *checkout.UseCase
	generateQRUC *generateqr.UseCase
	orderUC      *order.UseCase
	catalogUC    *catalog.UseCase
	ledgerUC     *ledger.UseCase
	logger       *slog.Logger
}

func NewHandler(
	checkoutUC *checkout.UseCase,
	generateQRUC *generateqr.UseCase,
	orderUC *order.UseCase,
	catalogUC *catalog.UseCase,
	ledgerUC *ledger.UseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		checkoutUC:   checkoutUC,
		generateQRUC: generateQRUC,
		orderUC:      orderUC,
		catalogUC:    catalogUC,
		ledgerUC:     ledgerUC,
		logger:       logger,
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.Products(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type StoreResponse struct {
	StoreName            string               `json:"store_name"`
	WhatsApp             string               `json:"whatsapp"`
	PaymentWindowMinutes int                  `json:"payment_window_minutes"`
	QRISFee              int64                `json:"qris_fee"`
	QRISEnabled          bool                 `json:"qris_enabled"`
	Rating               float64              `json:"rating"`
	Content              *entity.StoreContent `json:"content"`
}

func (h *Handler) HandleStore(w http.ResponseWriter, r *http.Request) {
	front, err := h.catalogUC.Storefront(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StoreResponse{
		StoreName:            front.StoreName,
		WhatsApp:             front.WhatsApp,
		PaymentWindowMinutes: front.PaymentWindowMinutes,
		QRISFee:              front.QRISFee,
		QRISEnabled:          front.QRISEnabled,
		Rating:               front.Rating,
		Content:              front.Content,
	})
}

type TestimonialRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type TestimonialResponse struct {
	Testimonial *entity.Testimonial `json:"testimonial"`
	Rating      float64             `json:"rating"`
}

func (h *Handler) HandleAddTestimonial(w http.ResponseWriter, r *http.Request) {
	var req TestimonialRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, rating, err := h.catalogUC.AddTestimonial(r.Context(), catalog.Review{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Rating:  req.Rating,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TestimonialResponse{Testimonial: t, Rating: rating})
}

type CheckoutRequest struct {
	Type     entity.PaymentType `json:"type"`
	Customer entity.Customer    `json:"customer"`
	Items    []struct {
		ProductID int64 `json:"id"`
		Qty       int   `json:"qty"`
	} `json:"items"`
}

type CheckoutResponse struct {
	Order       orderResponse `json:"order"`
	QRISPayload string        `json:"qris_payload,omitempty"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	Replayed    bool          `json:"replayed"`
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("X-Idempotency-Key")
	if idempotencyKey == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "X-Idempotency-Key header required"})
		return
	}

	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]checkout.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.Item{ProductID: it.ProductID, Qty: it.Qty})
	}

	resp, err := h.checkoutUC.Execute(r.Context(), checkout.Request{
		IdempotencyKey: idempotencyKey,
		PaymentType:    req.Type,
		Customer:       req.Customer,
		Items:          items,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := CheckoutResponse{Order: toOrderResponse(resp.Order), Replayed: resp.Replayed}
	if resp.Payment != nil {
		out.QRISPayload = resp.Payment.Payload
		out.ExpiresAt = &resp.Payment.ExpiresAt
		out.Order.ExpiresAt = &resp.Payment.ExpiresAt
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}

func (h *Handler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	d, err := h.orderUC.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := toOrderResponse(d.Order)
	if !d.ExpiresAt.IsZero() {
		out.ExpiresAt = &d.ExpiresAt
	}
	out.Expired = d.Expired
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	resp, err := h.generateQRUC.Execute(r.Context(), generateqr.Request{OrderID: chi.URLParam(r, "order_id")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Payment-Expires-At", resp.ExpiresAt.UTC().Format(time.RFC3339))
	_, _ = w.Write(resp.PNG)
}

type ProofRequest struct {
	ProofURL string `json:"proofUrl"`
}

func (h *Handler) HandleProof(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProofBytes)

	var req ProofRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.orderUC.UploadProof(r.Context(), chi.URLParam(r, "order_id"), req.ProofURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderUC.Cancel(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
