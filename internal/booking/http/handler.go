package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/response"
)

// SweepRunner runs one expiry pass on demand.
type SweepRunner interface {
	RunOnce(ctx context.Context) (booking.SweepResult, error)
}

type Handler struct {
	service booking.Service
	sweeper SweepRunner
}

func NewHandler(service booking.Service, sweeper SweepRunner) *Handler {
	return &Handler{
		service: service,
		sweeper: sweeper,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var uri TurfURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Reserve(c.Request.Context(), booking.ReserveRequest{
		UserID:    auth.GetUserID(c),
		TurfID:    uri.TurfID,
		Day:       body.Day,
		TimeRange: body.Time,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) ListMine(c *gin.Context) {
	var req ListMyBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.ListMine(c.Request.Context(), auth.GetActor(c), booking.Filter{
		Status:   booking.Status(req.Status),
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(NewBookingResponses(bookings), req.Page, req.Limit, total))
}

// List is the owner/admin view across users.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), auth.GetActor(c), booking.Filter{
		TurfID:   req.TurfID,
		Status:   booking.Status(req.Status),
		Day:      req.Day,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(NewBookingResponses(bookings), req.Page, req.Limit, total))
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdatePaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), uri.ID, auth.GetActor(c), booking.PaymentStatus(body.PaymentStatus))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Sweep expires elapsed bookings now instead of waiting for the next tick.
func (h *Handler) Sweep(c *gin.Context) {
	res, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SweepResponse{Scanned: res.Scanned, Expired: res.Expired, Failed: res.Failed})
}
