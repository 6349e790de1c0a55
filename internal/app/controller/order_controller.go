package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/service"
	apperrors "github.com/taragold/taraerp-backend/internal/errors"
	"github.com/taragold/taraerp-backend/internal/middleware"
)

type OrderController struct {
	orderService  service.OrderService
	reportService service.ReportService
}

func NewOrderController(orderService service.OrderService, reportService service.ReportService) *OrderController {
	return &OrderController{
		orderService:  orderService,
		reportService: reportService,
	}
}

type PlaceOrderRequest struct {
	PartnerRef  string  `json:"partner_ref" binding:"required"` // "<bp_code>-<business_name>"
	ItemName    string  `json:"item_name" binding:"required"`
	MetalType   string  `json:"metal_type"`
	Purity      string  `json:"purity"`
	WeightGrams float64 `json:"weight_grams"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	DesignNotes string  `json:"design_notes"`
	Attachment  string  `json:"attachment"`
	DueDate     string  `json:"due_date"` // YYYY-MM-DD
}

type ReviewRequest struct {
	Approve bool `json:"approve"`
}

type AdminVerifyRequest struct {
	Accept        bool   `json:"accept"`
	EstimatedDays int    `json:"estimated_days"`
	Notes         string `json:"notes"`
}

type AssignRequest struct {
	CraftsmanRef string `json:"craftsman_ref" binding:"required"` // "<bp_code>-<business_name>"
}

type CraftsmanResponseRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"` // required on rejection
	Notes  string `json:"notes"`  // required when reason is "other"
}

// actorID extracts the authenticated user for audit attribution.
func actorID(c *gin.Context) *uint {
	if userID, ok := middleware.GetUserID(c); ok {
		return &userID
	}
	return nil
}

func respondOrderError(c *gin.Context, err error, context string) {
	var stateErr *service.InvalidStateError
	if errors.As(err, &stateErr) {
		apperrors.Conflict(c, apperrors.OrderInvalidState, stateErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrPartnerNotFound):
		apperrors.NotFound(c, apperrors.PartnerNotFound, "Business partner not found")
	case errors.Is(err, service.ErrPartnerNotApproved):
		apperrors.Forbidden(c, "The partner is not approved for ordering")
	case errors.Is(err, service.ErrKYCBlocked):
		apperrors.Forbidden(c, "The partner's KYC is freezed or revoked")
	case errors.Is(err, service.ErrInvalidDueDate):
		apperrors.BadRequest(c, apperrors.OrderInvalidDueDate, "Due date must be tomorrow or later")
	case errors.Is(err, service.ErrCraftsmanNotFound):
		apperrors.NotFound(c, apperrors.OrderCraftsmanUnknown, "Craftsman not found")
	case errors.Is(err, service.ErrNotACraftsman):
		apperrors.BadRequest(c, apperrors.OrderCraftsmanUnknown, "The referenced partner is not a craftsman")
	case errors.Is(err, service.ErrInvalidReason):
		apperrors.BadRequest(c, apperrors.OrderInvalidReason, "The rejection reason is not recognized")
	case errors.Is(err, service.ErrReasonNotesRequired):
		apperrors.BadRequest(c, apperrors.OrderReasonRequired, "Notes are required when the rejection reason is \"other\"")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// Place creates a manufacturing order for an approved partner
// POST /api/v1/orders
func (ctrl *OrderController) Place(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Due date must be in YYYY-MM-DD format")
			return
		}
		dueDate = &parsed
	}

	log.Debug("Processing order placement", map[string]interface{}{
		"partner_ref": req.PartnerRef,
		"item_name":   req.ItemName,
	})

	input := service.PlaceOrderInput{
		PartnerRef:  req.PartnerRef,
		ItemName:    req.ItemName,
		MetalType:   req.MetalType,
		Purity:      req.Purity,
		WeightGrams: req.WeightGrams,
		Size:        req.Size,
		Quantity:    req.Quantity,
		DesignNotes: req.DesignNotes,
		Attachment:  req.Attachment,
		DueDate:     dueDate,
	}

	order, err := ctrl.orderService.PlaceOrder(input, actorID(c))
	if err != nil {
		log.Warn("Order placement failed", map[string]interface{}{
			"partner_ref": req.PartnerRef,
			"error":       err.Error(),
		})
		respondOrderError(c, err, "place order")
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"order_no":   order.OrderNo,
		"partner_id": order.PartnerID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// List returns orders, optionally filtered by status
// GET /api/v1/orders?status=pending
func (ctrl *OrderController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.OrderStatus(c.Query("status"))

	orders, err := ctrl.orderService.ListOrders(status)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"status": status,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// Get returns a single order
// GET /api/v1/orders/:order_no
func (ctrl *OrderController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	order, err := ctrl.orderService.GetOrder(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to get order", err, map[string]interface{}{
			"order_no": orderNo,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// History returns the audit trail of an order
// GET /api/v1/orders/:order_no/history
func (ctrl *OrderController) History(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	events, err := ctrl.orderService.GetOrderHistory(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to get order history", err, map[string]interface{}{
			"order_no": orderNo,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get order history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// PartnerOrders returns all orders placed by a partner
// GET /api/v1/orders/partner/:partner_ref
func (ctrl *OrderController) PartnerOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerRef := c.Param("partner_ref")

	orders, err := ctrl.orderService.GetPartnerOrders(partnerRef)
	if err != nil {
		log.Warn("Failed to get partner orders", map[string]interface{}{
			"partner_ref": partnerRef,
			"error":       err.Error(),
		})
		respondOrderError(c, err, "get partner orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// AssignedOrders returns orders assigned to a craftsman
// GET /api/v1/orders/assigned/:craftsman_ref?status=in-process
func (ctrl *OrderController) AssignedOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	craftsmanRef := c.Param("craftsman_ref")
	status := model.OrderStatus(c.Query("status"))

	orders, err := ctrl.orderService.GetAssignedOrders(craftsmanRef, status)
	if err != nil {
		log.Warn("Failed to get assigned orders", map[string]interface{}{
			"craftsman_ref": craftsmanRef,
			"error":         err.Error(),
		})
		respondOrderError(c, err, "get assigned orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// KeyUserReview approves or rejects a pending order
// POST /api/v1/orders/:order_no/review
func (ctrl *OrderController) KeyUserReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	order, err := ctrl.orderService.KeyUserReview(orderNo, req.Approve, actorID(c))
	if err != nil {
		log.Warn("Key user review failed", map[string]interface{}{
			"order_no": orderNo,
			"approve":  req.Approve,
			"error":    err.Error(),
		})
		respondOrderError(c, err, "review order")
		return
	}

	log.Info("Key user review recorded", map[string]interface{}{
		"order_no": orderNo,
		"approve":  req.Approve,
	})

	if !req.Approve {
		c.JSON(http.StatusOK, gin.H{
			"message": "Order rejected and removed from the queue",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order approved for processing",
		"order":   order,
	})
}

// AdminVerify accepts or rejects an in-process order at the admin desk
// POST /api/v1/orders/:order_no/verify
func (ctrl *OrderController) AdminVerify(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	var req AdminVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	order, err := ctrl.orderService.AdminVerify(orderNo, req.Accept, req.EstimatedDays, req.Notes, actorID(c))
	if err != nil {
		log.Warn("Admin verification failed", map[string]interface{}{
			"order_no": orderNo,
			"accept":   req.Accept,
			"error":    err.Error(),
		})
		respondOrderError(c, err, "verify order")
		return
	}

	log.Info("Admin verification recorded", map[string]interface{}{
		"order_no": orderNo,
		"accept":   req.Accept,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order verification recorded",
		"order":   order,
	})
}

// Assign hands an order to a craftsman
// POST /api/v1/orders/:order_no/assign
func (ctrl *OrderController) Assign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	order, err := ctrl.orderService.Assign(orderNo, req.CraftsmanRef, actorID(c))
	if err != nil {
		log.Warn("Order assignment failed", map[string]interface{}{
			"order_no":      orderNo,
			"craftsman_ref": req.CraftsmanRef,
			"error":         err.Error(),
		})
		respondOrderError(c, err, "assign order")
		return
	}

	log.Info("Order assigned", map[string]interface{}{
		"order_no":      orderNo,
		"craftsman_ref": req.CraftsmanRef,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order assigned to craftsman",
		"order":   order,
	})
}

// CraftsmanRespond records a craftsman accepting or rejecting an assignment
// POST /api/v1/orders/:order_no/response
func (ctrl *OrderController) CraftsmanRespond(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	var req CraftsmanResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	order, err := ctrl.orderService.CraftsmanRespond(orderNo, req.Accept, req.Reason, req.Notes, actorID(c))
	if err != nil {
		log.Warn("Craftsman response failed", map[string]interface{}{
			"order_no": orderNo,
			"accept":   req.Accept,
			"error":    err.Error(),
		})
		respondOrderError(c, err, "craftsman response")
		return
	}

	log.Info("Craftsman response recorded", map[string]interface{}{
		"order_no": orderNo,
		"accept":   req.Accept,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Craftsman response recorded",
		"order":   order,
	})
}

// ClaimCompletion moves an assigned order to awaiting final approval
// POST /api/v1/orders/:order_no/complete
func (ctrl *OrderController) ClaimCompletion(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	order, err := ctrl.orderService.ClaimCompletion(orderNo, actorID(c))
	if err != nil {
		log.Warn("Completion claim failed", map[string]interface{}{
			"order_no": orderNo,
			"error":    err.Error(),
		})
		respondOrderError(c, err, "claim completion")
		return
	}

	log.Info("Completion claimed", map[string]interface{}{
		"order_no": orderNo,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Completion claimed, awaiting approval",
		"order":   order,
	})
}

// FinalApprove confirms the finished work and closes the order
// POST /api/v1/orders/:order_no/approve
func (ctrl *OrderController) FinalApprove(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNo := c.Param("order_no")

	order, err := ctrl.orderService.FinalApprove(orderNo, actorID(c))
	if err != nil {
		log.Warn("Final approval failed", map[string]interface{}{
			"order_no": orderNo,
			"error":    err.Error(),
		})
		respondOrderError(c, err, "approve order")
		return
	}

	log.Info("Order completed", map[string]interface{}{
		"order_no": orderNo,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order completed",
		"order":   order,
	})
}

// Export streams an XLSX workbook of orders
// GET /api/v1/orders/export?status=complete
func (ctrl *OrderController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.OrderStatus(c.Query("status"))

	buf, filename, err := ctrl.reportService.ExportOrders(status)
	if err != nil {
		log.Error("Failed to export orders", err, map[string]interface{}{
			"status": status,
		})
		apperrors.InternalError(c, "Failed to generate the export")
		return
	}

	log.Info("Order export generated", map[string]interface{}{
		"filename": filename,
		"bytes":    buf.Len(),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
