package routes

import (
	"github.com/gin-gonic/gin"

	"campus_fleet/internal/controllers"
	"campus_fleet/internal/middleware"
)

func VehicleRoutes(r *gin.Engine, vehicles *controllers.VehicleController) {
	v := r.Group("/vehicles")
	v.Use(middleware.RequireAuth())
	{
		v.GET("", vehicles.ListVehicles)
		v.GET("/:id", vehicles.GetVehicle)
	}

	admin := r.Group("/vehicles")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.POST("", vehicles.CreateVehicle)
		admin.PUT("/:id", vehicles.UpdateVehicle)
		admin.PATCH("/:id/state", vehicles.SetVehicleState)
	}
}
