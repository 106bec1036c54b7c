package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
)

// RegisterRoutes registers turf and slot routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/turfs")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/slots", h.ListSlots)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("", auth.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.Create)
		authed.PUT("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
		authed.POST("/:id/images", h.UploadImage)

		authed.POST("/:id/slots", h.AddSlots)
		authed.PATCH("/:id/slots", h.BulkUpdateSlots)
		authed.DELETE("/:id/slots", h.RemoveSlot)
		authed.PATCH("/:id/slots/:slotId", h.UpdateSlot)
		authed.DELETE("/:id/slots/:slotId", h.RemoveSlot)
	}
}
