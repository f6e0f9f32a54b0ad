package routes

import (
	"github.com/gin-gonic/gin"

	"campus_fleet/internal/controllers"
	"campus_fleet/internal/middleware"
)

func ReservationRoutes(r *gin.Engine, reservations *controllers.ReservationController) {
	res := r.Group("/reservations")
	res.Use(middleware.RequireAuth())
	{
		res.POST("", reservations.Create)
		res.GET("/mine", reservations.ListMine)
		res.GET("/calendar", reservations.Calendar)
		res.GET("/availability", reservations.CheckAvailability)
		res.GET("/:id", reservations.Get)
		// Ownership is enforced by the engine, not the route.
		res.POST("/:id/cancel", reservations.Cancel)
	}

	gated := r.Group("/reservations")
	gated.Use(middleware.RequireAuthWithRole("admin"))
	{
		gated.POST("/:id/approve", reservations.Approve)
		gated.POST("/:id/reject", reservations.Reject)
		gated.PATCH("/:id/window", reservations.UpdateWindow)
	}

	complete := r.Group("/reservations")
	complete.Use(middleware.RequireAuthWithRole("admin", "driver"))
	{
		complete.POST("/:id/complete", reservations.Complete)
	}
}
