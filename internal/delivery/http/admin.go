package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/entity"
)

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*entity.Order
		err    error
	)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "active":
		orders, err = h.orderUC.ListActive(r.Context())
	case "history":
		orders, err = h.orderUC.ListHistory(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scope must be active or history"})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

type StatusRequest struct {
	Status entity.OrderStatus `json:"status"`
}

func (h *Handler) HandleResolveOrder(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.orderUC.Resolve(r.Context(), chi.URLParam(r, "order_id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) HandleLosses(w http.ResponseWriter, r *http.Request) {
	losses, err := h.ledgerUC.Losses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]lossResponse, 0, len(losses))
	for _, l := range losses {
		out = append(out, toLossResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type LossRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) HandleAddLoss(w http.ResponseWriter, r *http.Request) {
	var req LossRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	l, err := h.ledgerUC.AddLoss(r.Context(), req.Amount, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLossResponse(l))
}

type SummaryResponse struct {
	Revenue   int64 `json:"revenue"`
	Fees      int64 `json:"fees"`
	ItemsSold int   `json:"items_sold"`
	Losses    int64 `json:"losses"`
	Net       int64 `json:"net"`
	Active    int   `json:"active"`
	Confirmed int   `json:"confirmed"`
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.ledgerUC.Summary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse(*s))
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerUC.Reset(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"img"`
}

func (h *Handler) HandleSaveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p := entity.NewProduct(id, req.Name, req.Description, req.Price, req.ImageURL)
	if err := h.catalogUC.SaveProduct(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.catalogUC.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid product_id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.catalogUC.Settings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var s entity.Settings
	if err := decodeJSON(r, &s); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalogUC.SaveSettings(r.Context(), &s); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &s)
}

func (h *Handler) HandleSaveContent(w http.ResponseWriter, r *http.Request) {
	var c entity.StoreContent
	if err := decodeJSON(r, &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalogUC.SaveContent(r.Context(), &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &c)
}
