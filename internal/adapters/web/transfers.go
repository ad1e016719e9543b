package web

import (
	"net/http"

	"retail-ops/internal/app"
)

type transferLineRequest struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
}

func toTransferLines(lines []transferLineRequest) []app.TransferLine {
	out := make([]app.TransferLine, len(lines))
	for i, l := range lines {
		out[i] = app.TransferLine{ProductID: l.ProductID, Quantity: l.Quantity, Condition: l.Condition}
	}
	return out
}

type transferRequest struct {
	TransferType         string                `json:"transfer_type"`
	SourceID             int                   `json:"source_id"`
	DestinationID        int                   `json:"destination_id"`
	Priority             string                `json:"priority"`
	ExpectedDeliveryDate string                `json:"expected_delivery_date"`
	Notes                string                `json:"notes"`
	Items                []transferLineRequest `json:"items"`
}

// createTransfer handles POST /api/transfers. The requester is the
// authenticated user; callers cannot open transfers on someone else's behalf.
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateTransfer(r.Context(), app.CreateTransferRequest{
		TransferType:         req.TransferType,
		SourceID:             req.SourceID,
		DestinationID:        req.DestinationID,
		Priority:             req.Priority,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		Items:                toTransferLines(req.Items),
		RequestedBy:          personRef(authFromContext(r.Context())),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Transfer)
}

// getTransfer handles GET /api/transfers/{id}.
func (h *Handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// listTransfers handles GET /api/transfers.
func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListTransfers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfers)
}

// listPendingValidation handles GET /api/transfers/pending-validation.
func (h *Handler) listPendingValidation(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPendingValidation(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfers)
}

// updateTransfer handles PUT /api/transfers/{id}.
func (h *Handler) updateTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateTransfer(r.Context(), id, app.UpdateTransferRequest{
		TransferType:         req.TransferType,
		SourceID:             req.SourceID,
		DestinationID:        req.DestinationID,
		Priority:             req.Priority,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		Items:                toTransferLines(req.Items),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// validateTransfer handles POST /api/transfers/{id}/validate.
func (h *Handler) validateTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ValidateTransfer(r.Context(), app.ValidateTransferRequest{
		TransferID:  id,
		Approve:     req.Approve,
		Notes:       req.Notes,
		ValidatedBy: personRef(authFromContext(r.Context())),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// dispatchTransfer handles POST /api/transfers/{id}/dispatch.
func (h *Handler) dispatchTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DispatchTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// receiveTransfer handles POST /api/transfers/{id}/receive.
func (h *Handler) receiveTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Lines []struct {
			ItemID      int `json:"item_id"`
			QtyReceived int `json:"qty_received"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]app.ReceiveLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = app.ReceiveLine{ItemID: l.ItemID, QtyReceived: l.QtyReceived}
	}

	result, err := h.svc.ReceiveTransfer(r.Context(), app.ReceiveTransferRequest{
		TransferID: id,
		Lines:      lines,
		ReceivedBy: personRef(authFromContext(r.Context())),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// cancelTransfer handles POST /api/transfers/{id}/cancel.
func (h *Handler) cancelTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CancelTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// deleteTransfer handles DELETE /api/transfers/{id}.
func (h *Handler) deleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransfer(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
