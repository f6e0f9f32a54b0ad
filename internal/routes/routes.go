package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus_fleet/internal/clock"
	"campus_fleet/internal/controllers"
	"campus_fleet/internal/reservation"
)

// Deps carries the wired dependencies the route handlers need.
type Deps struct {
	DB           *gorm.DB
	Reservations *reservation.Service
	Clock        clock.Clock
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	auth := controllers.NewAuthController(deps.DB)
	vehicles := controllers.NewVehicleController(deps.DB)
	drivers := controllers.NewDriverController(deps.DB)
	parts := controllers.NewSparePartController(deps.DB)
	repairs := controllers.NewRepairController(deps.DB)
	reservations := controllers.NewReservationController(deps.Reservations, deps.Clock)

	AuthRoutes(r, auth)
	VehicleRoutes(r, vehicles)
	DriverRoutes(r, drivers)
	ReservationRoutes(r, reservations)
	AdminRoutes(r, parts, repairs, reservations)

	return r
}
