package booking

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"innkeeper/internal/domain"
	"innkeeper/internal/pkg/response"
)

// Assigner binds concrete rooms to a booking; implemented by the
// assignment service.
type Assigner interface {
	Assign(ctx context.Context, bookingID int64, roomIDs []int64) (*domain.Booking, error)
}

// AvailabilityService answers the read-only availability endpoint for
// either a concrete room or a room type.
type AvailabilityService interface {
	IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error)
	IsTypeAvailable(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, roomsWanted int, excludeBookingID int64) (bool, error)
}

type Handler struct {
	service      *Service
	assigner     Assigner
	availability AvailabilityService
}

func NewHandler(service *Service, assigner Assigner, availability AvailabilityService) *Handler {
	return &Handler{
		service:      service,
		assigner:     assigner,
		availability: availability,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.Quote)
	rg.GET("/availability", h.Availability)
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/:id", h.Get)
	rg.GET("/guests/:id/bookings", h.ListByGuest)
	rg.POST("/bookings/:id/confirm", h.Confirm)
	rg.POST("/bookings/:id/check-in", h.CheckIn)
	rg.POST("/bookings/:id/check-out", h.CheckOut)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/no-show", h.MarkNoShow)
	rg.POST("/bookings/:id/rooms", h.AssignRooms)
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	actorID := c.GetInt64("staff_id")
	b, err := h.service.Create(c.Request.Context(), req, actorID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListByGuest(c *gin.Context) {
	guestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || guestID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid guest id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.ListByGuest(c.Request.Context(), guestID, limit, offset)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.CheckIn(c.Request.Context(), id, req.ActualTime)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CheckOut(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.CheckOut(c.Request.Context(), id, req.ActualTime, req.Notes)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AssignRooms(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req AssignRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.assigner.Assign(c.Request.Context(), id, req.RoomIDs)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	quote, err := h.service.QuoteForType(c.Request.Context(), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) Availability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	checkIn, err := parseStayDate(q.CheckIn, h.service.policy.CheckInHour)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	checkOut, err := parseStayDate(q.CheckOut, h.service.policy.CheckOutHour)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	var available bool
	switch {
	case q.RoomID != 0:
		available, err = h.availability.IsRoomAvailable(c.Request.Context(), q.RoomID, checkIn, checkOut, q.Exclude)
	case q.RoomTypeID != 0:
		available, err = h.availability.IsTypeAvailable(c.Request.Context(), q.RoomTypeID, checkIn, checkOut, q.Rooms, q.Exclude)
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id or room_type_id is required")
		return
	}
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"available": available})
}
