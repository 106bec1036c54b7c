package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("/my", h.ListMine)
		group.GET("", auth.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.List)
		group.GET("/:id", h.Get)
		group.POST("/:turfId", h.Create)
		group.PATCH("/:id/cancel", h.Cancel)
		group.PATCH("/:id/payment", auth.RequireRole(auth.RoleAdmin), h.UpdatePayment)
		group.POST("/sweep", auth.RequireRole(auth.RoleAdmin), h.Sweep)
	}
}
