package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"retail-ops/internal/app"
)

type stockLineRequest struct {
	WarehouseName string `json:"warehouse_name"`
	Quantity      int    `json:"quantity"`
}

func toStockLines(lines []stockLineRequest) []app.StockLine {
	if lines == nil {
		return nil
	}
	out := make([]app.StockLine, len(lines))
	for i, l := range lines {
		out[i] = app.StockLine{WarehouseName: l.WarehouseName, Quantity: l.Quantity}
	}
	return out
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string             `json:"name"`
		Price    decimal.Decimal    `json:"price"`
		Category string             `json:"category"`
		SKU      string             `json:"sku"`
		Stocks   []stockLineRequest `json:"stocks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		SKU:      req.SKU,
		Stocks:   toStockLines(req.Stocks),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// listProducts handles GET /api/products?category=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

// listLowStock handles GET /api/products/low-stock.
func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListLowStock(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

// updateProduct handles PUT /api/products/{id}. Fields absent from the body
// are left unchanged.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Name     *string            `json:"name"`
		Price    *decimal.Decimal   `json:"price"`
		Category *string            `json:"category"`
		SKU      *string            `json:"sku"`
		Stocks   []stockLineRequest `json:"stocks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateProduct(r.Context(), id, app.UpdateProductRequest{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		SKU:      req.SKU,
		Stocks:   toStockLines(req.Stocks),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// createCategory handles POST /api/categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Category)
}

// listCategories handles GET /api/categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Categories)
}

// updateCategory handles PUT /api/categories/{id}.
func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Category)
}

// deleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type warehouseRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
	Manager  string `json:"manager"`
	Status   string `json:"status"`
}

func (req warehouseRequest) toApp() app.WarehouseRequest {
	return app.WarehouseRequest{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		Manager:  req.Manager,
		Status:   req.Status,
	}
}

// createWarehouse handles POST /api/warehouses.
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateWarehouse(r.Context(), req.toApp())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Warehouse)
}

// getWarehouse handles GET /api/warehouses/{id}.
func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetWarehouse(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Warehouse)
}

// listWarehouses handles GET /api/warehouses?active=true.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	result, err := h.svc.ListWarehouses(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Warehouses)
}

// updateWarehouse handles PUT /api/warehouses/{id}.
func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req warehouseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateWarehouse(r.Context(), id, req.toApp())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Warehouse)
}

// deleteWarehouse handles DELETE /api/warehouses/{id}.
func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteWarehouse(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
