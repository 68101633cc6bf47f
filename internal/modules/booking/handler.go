package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/niranjan-aware/resonance-system/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.POST("/bookings/by-phone", h.ListByPhone)
	rg.POST("/bookings/availability", h.CheckAvailability)
	rg.PUT("/bookings/:id/cancel", h.Cancel)
	rg.PUT("/bookings/:id/reschedule", h.Reschedule)
	rg.GET("/timetable", h.Timetable)
}

// RegisterAdminRoutes mounts the operator-only lifecycle endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/bookings/:id/complete", h.Complete)
	rg.PUT("/bookings/:id/no-show", h.MarkNoShow)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated,
		"Booking created successfully! You will receive a WhatsApp confirmation shortly.",
		gin.H{"booking": res})
}

func (h *Handler) ListByPhone(c *gin.Context) {
	var req ByPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required")
		return
	}

	list, name, err := h.service.ListByPhone(c.Request.Context(), req.Phone, req.Filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"bookings":      list,
		"count":         len(list),
		"customer_name": name,
	})
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	available, err := h.service.IsSlotAvailable(c.Request.Context(), req.StudioID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(c, err)
		return
	}

	message := "Slot is available"
	if !available {
		message = "Slot is already booked"
	}
	response.SuccessWithMessage(c, http.StatusOK, message, gin.H{"available": available})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required")
		return
	}

	res, err := h.service.Cancel(c.Request.Context(), id, req.Phone, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	message := "Booking cancelled successfully"
	if res.Cancellation.PenaltyAmount > 0 {
		message = fmt.Sprintf("Booking cancelled. Penalty: ₹%d (payable at next booking)", res.Cancellation.PenaltyAmount)
	}
	response.SuccessWithMessage(c, http.StatusOK, message, gin.H{"booking": res})
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Booking rescheduled successfully", gin.H{"booking": res})
}

func (h *Handler) Timetable(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Start date and end date are required")
		return
	}
	var studioID int64
	if raw := c.Query("studio_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid studio ID")
			return
		}
		studioID = v
	}

	tt, err := h.service.Timetable(c.Request.Context(), startDate, endDate, studioID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"timetable": tt})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	res, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": res})
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	res, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": res})
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking parameters")
	case errors.Is(err, ErrStudioNotFound):
		response.Error(c, http.StatusNotFound, "STUDIO_NOT_FOUND", "Studio not found or inactive")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "This time slot is already booked")
	case errors.Is(err, ErrPhoneMismatch):
		response.Error(c, http.StatusForbidden, "PHONE_MISMATCH", "Phone number does not match booking owner")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusBadRequest, "ALREADY_CANCELLED", "Booking is already cancelled")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", "Booking cannot change state from its current status")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
