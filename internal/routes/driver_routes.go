package routes

import (
	"github.com/gin-gonic/gin"

	"campus_fleet/internal/controllers"
	"campus_fleet/internal/middleware"
)

func DriverRoutes(r *gin.Engine, drivers *controllers.DriverController) {
	d := r.Group("/drivers")
	d.Use(middleware.RequireAuth())
	{
		d.GET("", drivers.ListDrivers)
		d.GET("/:id", drivers.GetDriver)
	}

	admin := r.Group("/drivers")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.PUT("/:id", drivers.UpdateDriver)
		admin.PATCH("/:id/enabled", drivers.SetDriverEnabled)
	}
}
