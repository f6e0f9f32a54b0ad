package routes

import (
	"github.com/gin-gonic/gin"

	"campus_fleet/internal/controllers"
	"campus_fleet/internal/middleware"
)

func AdminRoutes(r *gin.Engine, parts *controllers.SparePartController, repairs *controllers.RepairController, reservations *controllers.ReservationController) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/reservations", reservations.ListAll)

		admin.POST("/parts", parts.CreatePart)
		admin.GET("/parts", parts.ListParts)
		admin.PUT("/parts/:id", parts.UpdatePart)
		admin.PATCH("/parts/:id/stock", parts.AdjustStock)

		admin.POST("/repairs", repairs.OpenTicket)
		admin.GET("/repairs", repairs.ListTickets)
		admin.POST("/repairs/:id/parts", repairs.AddPart)
		admin.POST("/repairs/:id/close", repairs.CloseTicket)
	}
}
