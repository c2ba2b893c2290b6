package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	salesrepo "github.com/developerstore/sales-backend/internal/data/repos/sales"
	"github.com/developerstore/sales-backend/internal/platform/logger"
	"github.com/developerstore/sales-backend/internal/requestdata"
	"github.com/developerstore/sales-backend/internal/services"
)

type SaleHandler struct {
	log         *logger.Logger
	saleService services.SaleService
}

func NewSaleHandler(log *logger.Logger, saleService services.SaleService) *SaleHandler {
	return &SaleHandler{
		log:         log.With("handler", "SaleHandler"),
		saleService: saleService,
	}
}

type saleItemRequest struct {
	ID          *uuid.UUID      `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	// Accepted on the wire for older clients; the discount is always
	// recomputed from quantity and this value is ignored.
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
}

func (r saleItemRequest) toInput() services.SaleItemInput {
	in := services.SaleItemInput{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
	if r.ID != nil {
		in.ID = *r.ID
	}
	return in
}

type createSaleRequest struct {
	CustomerID   uuid.UUID         `json:"customer_id" binding:"required"`
	CustomerName string            `json:"customer_name" binding:"required"`
	BranchID     uuid.UUID         `json:"branch_id" binding:"required"`
	BranchName   string            `json:"branch_name" binding:"required"`
	Items        []saleItemRequest `json:"items" binding:"required,dive"`
}

type updateSaleRequest struct {
	CustomerID   uuid.UUID         `json:"customer_id" binding:"required"`
	CustomerName string            `json:"customer_name" binding:"required"`
	BranchID     uuid.UUID         `json:"branch_id" binding:"required"`
	BranchName   string            `json:"branch_name" binding:"required"`
	Items        []saleItemRequest `json:"items" binding:"required,dive"`
}

type updateSaleItemRequest struct {
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

func (h *SaleHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	items := make([]services.SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toInput())
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), rd.UserID, services.CreateSaleInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		BranchName:   req.BranchName,
		Items:        items,
	})
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondCreated(c, gin.H{"sale": sale})
}

func (h *SaleHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

func (h *SaleHandler) GetByNumber(c *gin.Context) {
	sale, err := h.saleService.GetSaleByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

func (h *SaleHandler) List(c *gin.Context) {
	filter, err := parseSaleFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}
	sales, total, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 || size > 100 {
		size = 10
	}
	RespondOK(c, gin.H{
		"sales": sales,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func (h *SaleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	items := make([]services.SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toInput())
	}
	sale, err := h.saleService.UpdateSale(c.Request.Context(), id, services.UpdateSaleInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		BranchName:   req.BranchName,
		Items:        items,
	})
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

// Cancel handles DELETE on a sale. Sales are never hard-deleted; deletion
// is expressed as cancellation.
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	sale, err := h.saleService.CancelSale(c.Request.Context(), id)
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

func (h *SaleHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	var req saleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sale, err := h.saleService.AddItem(c.Request.Context(), id, req.toInput())
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondCreated(c, gin.H{"sale": sale})
}

func (h *SaleHandler) UpdateItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	var req updateSaleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sale, err := h.saleService.UpdateItem(c.Request.Context(), saleID, itemID, req.Quantity, req.UnitPrice)
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

func (h *SaleHandler) CancelItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_sale_id", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	sale, err := h.saleService.CancelItem(c.Request.Context(), saleID, itemID)
	if err != nil {
		RespondAggregateError(c, err)
		return
	}
	RespondOK(c, gin.H{"sale": sale})
}

func parseSaleFilter(c *gin.Context) (salesrepo.SaleFilter, error) {
	var filter salesrepo.SaleFilter
	var err error

	if v := c.Query("page"); v != "" {
		if filter.Page, err = strconv.Atoi(v); err != nil {
			return filter, err
		}
	}
	if v := c.Query("size"); v != "" {
		if filter.Size, err = strconv.Atoi(v); err != nil {
			return filter, err
		}
	}
	filter.SaleNumber = c.Query("saleNumber")
	filter.CustomerName = c.Query("customerName")
	filter.OrderBy = c.Query("orderBy")

	if v := c.Query("customerId"); v != "" {
		if filter.CustomerID, err = uuid.Parse(v); err != nil {
			return filter, err
		}
	}
	if v := c.Query("branchId"); v != "" {
		if filter.BranchID, err = uuid.Parse(v); err != nil {
			return filter, err
		}
	}
	if v := c.Query("isCancelled"); v != "" {
		cancelled, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.IsCancelled = &cancelled
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	if v := c.Query("minAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MinAmount = &d
	}
	if v := c.Query("maxAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MaxAmount = &d
	}
	return filter, nil
}
