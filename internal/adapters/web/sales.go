package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"retail-ops/internal/app"
)

// checkout handles POST /api/sales/checkout. The cashier is the
// authenticated user; prices are read from the catalog, not the request.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]app.CheckoutLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = app.CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	claims := authFromContext(r.Context())
	result, err := h.svc.Checkout(r.Context(), app.CheckoutRequest{
		Lines:     lines,
		CashierID: claims.UserID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Transaction)
}

// listTransactions handles GET /api/sales?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Bounds are optional; from is inclusive, to exclusive.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, r, "invalid from date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, r, "invalid to date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		to = &t
	}

	result, err := h.svc.ListTransactions(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transactions)
}

// watchStock handles GET /api/stock/watch?product_id=N as a server-sent
// event stream. product_id 0 (or absent) watches every product. The stream
// runs until the client disconnects.
func (h *Handler) watchStock(w http.ResponseWriter, r *http.Request) {
	productID := 0
	if v := r.URL.Query().Get("product_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			writeError(w, r, "invalid product_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		productID = id
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming unsupported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	updates, cancel := h.svc.WatchStock(productID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(update)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: stock\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
