package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	fileHttp "github.com/nekogravitycat/turf-booking-backend/internal/file/http"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type Handler struct {
	service        turf.Service
	files          *fileHttp.Handler
	maxUploadBytes int64
}

func NewHandler(service turf.Service, files *fileHttp.Handler, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		files:          files,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListTurfsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	turfs, total, err := h.service.List(c.Request.Context(), turf.Filter{
		OwnerID:   req.OwnerID,
		City:      req.City,
		SportType: req.SportType,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Page:      req.Page,
		PageSize:  req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TurfResponse, len(turfs))
	for i, t := range turfs {
		items[i] = NewTurfResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.Limit, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTurfResponse(t))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTurfRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), auth.GetActor(c), turf.CreateRequest{
		Name:         body.Name,
		City:         body.City,
		Address:      body.Address,
		SportTypes:   body.SportTypes,
		PricePerHour: body.PricePerHour,
		Slots:        toSlots(body.Slots),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTurfResponse(t))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateTurfRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetActor(c), turf.UpdateRequest{
		Name:         body.Name,
		City:         body.City,
		Address:      body.Address,
		SportTypes:   body.SportTypes,
		PricePerHour: body.PricePerHour,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTurfResponse(t))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart "file" and appends it to the turf's images.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	actor := auth.GetActor(c)
	if err := h.service.CheckCanMutate(c.Request.Context(), uri.ID, actor); err != nil {
		response.Error(c, err)
		return
	}

	h.files.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "file",
		MaxSizeBytes:  h.maxUploadBytes,
		AllowedTypes:  imageTypes,
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			return h.service.AddImage(ctx, uri.ID, actor, fileID)
		},
	})
}

func (h *Handler) ListSlots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": NewSlotResponses(slots)})
}

func (h *Handler) AddSlots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body AddSlotsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	added, err := h.service.AddSlots(c.Request.Context(), uri.ID, auth.GetActor(c), toSlots(body.Slots))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slots": NewSlotResponses(added)})
}

func (h *Handler) BulkUpdateSlots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body BulkUpdateSlotsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	applied, slots, err := h.service.BulkUpdateSlots(c.Request.Context(), uri.ID, auth.GetActor(c), body.toUpdates())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BulkUpdateSlotsResponse{Applied: applied, Slots: NewSlotResponses(slots)})
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	var uri SlotURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	slot, err := h.service.UpdateSlot(c.Request.Context(), uri.ID, uri.SlotID, auth.GetActor(c), turf.SlotPatch{
		Day:       body.SlotData.Day,
		TimeRange: body.SlotData.Time,
		Price:     body.SlotData.Price,
		IsBooked:  body.SlotData.IsBooked,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSlotResponse(*slot))
}

// RemoveSlot takes the slot from the path or, for older clients, from ?slot_id=.
func (h *Handler) RemoveSlot(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	slotID := c.Param("slotId")
	if slotID == "" {
		slotID = c.Query("slot_id")
	}
	if slotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_id is required"})
		return
	}

	if err := h.service.RemoveSlot(c.Request.Context(), uri.ID, slotID, auth.GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
