package http

import (
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/file"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
	userHttp "github.com/nekogravitycat/turf-booking-backend/internal/user/http"
)

var (
	errPriceRange    = apperror.Validation("min_price must not exceed max_price")
	errSlotReference = apperror.Validation("each slot update needs slot_id or both day and time")
)

// ListTurfsRequest defines query parameters for listing turfs.
type ListTurfsRequest struct {
	request.ListParams
	OwnerID   string   `form:"owner_id" binding:"omitempty,uuid"`
	City      string   `form:"city"`
	SportType string   `form:"sport_type"`
	MinPrice  *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"max_price" binding:"omitempty,gte=0"`
}

func (r *ListTurfsRequest) Validate() error {
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		return errPriceRange
	}
	return nil
}

// TurfTag is a brief representation of a turf.
type TurfTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ImageResponse struct {
	FileID       string `json:"file_id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type SlotResponse struct {
	ID       string  `json:"id"`
	Day      string  `json:"day"`
	Time     string  `json:"time"`
	Price    float64 `json:"price"`
	IsBooked bool    `json:"is_booked"`
}

func NewSlotResponse(s turf.Slot) SlotResponse {
	return SlotResponse{
		ID:       s.ID,
		Day:      s.Day,
		Time:     s.TimeRange,
		Price:    s.Price,
		IsBooked: s.IsBooked,
	}
}

func NewSlotResponses(slots []turf.Slot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = NewSlotResponse(s)
	}
	return out
}

type TurfResponse struct {
	ID           string           `json:"id"`
	Owner        userHttp.UserTag `json:"owner"`
	Name         string           `json:"name"`
	City         string           `json:"city"`
	Address      string           `json:"address"`
	SportTypes   []string         `json:"sport_types"`
	PricePerHour float64          `json:"price_per_hour"`
	Images       []ImageResponse  `json:"images"`
	IsVerified   bool             `json:"is_verified"`
	Slots        []SlotResponse   `json:"slots,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func NewTurfResponse(t *turf.Turf) TurfResponse {
	images := make([]ImageResponse, len(t.Images))
	for i, id := range t.Images {
		images[i] = ImageResponse{FileID: id, URL: file.FileURL(id), ThumbnailURL: file.ThumbnailURL(id)}
	}
	sportTypes := t.SportTypes
	if sportTypes == nil {
		sportTypes = []string{}
	}

	resp := TurfResponse{
		ID:           t.ID,
		Owner:        userHttp.UserTag{ID: t.OwnerID, Name: t.OwnerName},
		Name:         t.Name,
		City:         t.City,
		Address:      t.Address,
		SportTypes:   sportTypes,
		PricePerHour: t.PricePerHour,
		Images:       images,
		IsVerified:   t.IsVerified,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if len(t.Slots) > 0 {
		resp.Slots = NewSlotResponses(t.Grid().Slots())
	}
	return resp
}

// SlotInput is one new slot in a create or add request.
type SlotInput struct {
	Day   string  `json:"day" binding:"required,weekday"`
	Time  string  `json:"time" binding:"required,timerange"`
	Price float64 `json:"price" binding:"required,gt=0"`
}

func toSlots(in []SlotInput) []turf.Slot {
	out := make([]turf.Slot, len(in))
	for i, s := range in {
		out[i] = turf.Slot{Day: s.Day, TimeRange: s.Time, Price: s.Price}
	}
	return out
}

type CreateTurfRequest struct {
	Name         string      `json:"name" binding:"required,max=200"`
	City         string      `json:"city" binding:"required,max=100"`
	Address      string      `json:"address" binding:"max=500"`
	SportTypes   []string    `json:"sport_types" binding:"omitempty,dive,max=50"`
	PricePerHour float64     `json:"price_per_hour" binding:"gte=0"`
	Slots        []SlotInput `json:"slots" binding:"omitempty,dive"`
}

// UpdateTurfRequest uses pointers to distinguish "not sent" from empty values.
type UpdateTurfRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=200"`
	City         *string  `json:"city" binding:"omitempty,max=100"`
	Address      *string  `json:"address" binding:"omitempty,max=500"`
	SportTypes   []string `json:"sport_types" binding:"omitempty,dive,max=50"`
	PricePerHour *float64 `json:"price_per_hour" binding:"omitempty,gte=0"`
}

type AddSlotsRequest struct {
	Slots []SlotInput `json:"slots" binding:"required,min=1,dive"`
}

type SlotPatchBody struct {
	Day      *string  `json:"day" binding:"omitempty,weekday"`
	Time     *string  `json:"time" binding:"omitempty,timerange"`
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	IsBooked *bool    `json:"is_booked"`
}

type UpdateSlotRequest struct {
	SlotData *SlotPatchBody `json:"slot_data" binding:"required"`
}

type SlotUpdateBody struct {
	SlotID   string   `json:"slot_id"`
	Day      string   `json:"day" binding:"omitempty,weekday"`
	Time     string   `json:"time" binding:"omitempty,timerange"`
	IsBooked *bool    `json:"is_booked" binding:"required"`
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	NewDay   *string  `json:"new_day" binding:"omitempty,weekday"`
	NewTime  *string  `json:"new_time" binding:"omitempty,timerange"`
}

type BulkUpdateSlotsRequest struct {
	SlotUpdates []SlotUpdateBody `json:"slot_updates" binding:"required,min=1,dive"`
}

func (r *BulkUpdateSlotsRequest) Validate() error {
	for _, u := range r.SlotUpdates {
		if u.SlotID == "" && (u.Day == "" || u.Time == "") {
			return errSlotReference
		}
	}
	return nil
}

func (r *BulkUpdateSlotsRequest) toUpdates() []turf.SlotUpdate {
	out := make([]turf.SlotUpdate, len(r.SlotUpdates))
	for i, u := range r.SlotUpdates {
		out[i] = turf.SlotUpdate{
			SlotID:    u.SlotID,
			Day:       u.Day,
			TimeRange: u.Time,
			IsBooked:  *u.IsBooked,
			Price:     u.Price,
			NewDay:    u.NewDay,
			NewTime:   u.NewTime,
		}
	}
	return out
}

type BulkUpdateSlotsResponse struct {
	Applied int            `json:"applied"`
	Slots   []SlotResponse `json:"slots"`
}

type SlotURIRequest struct {
	ID     string `uri:"id" binding:"required,uuid"`
	SlotID string `uri:"slotId" binding:"required,uuid"`
}
