package payment

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"innkeeper/internal/domain"
	"innkeeper/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the staff-facing payment endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.RecordPayment)
	rg.POST("/payments/:id/refunds", h.RecordRefund)
	rg.GET("/bookings/:id/payment-status", h.AggregateStatus)
}

// RegisterWebhookRoutes mounts the gateway callback. It is registered
// outside the authenticated group because the gateway does not carry a
// staff token.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/gateway", h.GatewayWebhook)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), req.BookingID, req.Amount, req.Currency, req.Method, req.GatewayRef)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": toPaymentResponse(p)})
}

func (h *Handler) RecordRefund(c *gin.Context) {
	paymentID := c.Param("id")
	if paymentID == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment id")
		return
	}

	var req RecordRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	ref, err := h.service.RecordRefund(c.Request.Context(), paymentID, req.Amount, req.Reason)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"refund": toRefundResponse(ref)})
}

func (h *Handler) AggregateStatus(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	status, err := h.service.AggregateStatus(c.Request.Context(), bookingID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, AggregateStatusResponse{BookingID: bookingID, Status: string(status)})
}

func (h *Handler) GatewayWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unreadable payload")
		return
	}

	var evt domain.GatewayEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload")
		return
	}

	applied, err := h.service.HandleGatewayEvent(c.Request.Context(), evt, raw)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"applied": applied})
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount.StringFixed(2),
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
	}
	if p.PaidAt != nil {
		resp.PaidAt = p.PaidAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func toRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		Amount:    r.Amount.StringFixed(2),
		Status:    string(r.Status),
		Reason:    r.Reason,
	}
}
