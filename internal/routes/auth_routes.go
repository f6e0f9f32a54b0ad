package routes

import (
	"github.com/gin-gonic/gin"

	"campus_fleet/internal/controllers"
)

func AuthRoutes(r *gin.Engine, auth *controllers.AuthController) {
	a := r.Group("/auth")
	{
		a.POST("/signup", auth.Signup)
		a.POST("/login", auth.Login)
	}
}
