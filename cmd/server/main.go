package main

import (
	"log"
	"net/http"

	"campus_fleet/internal/audit"
	"campus_fleet/internal/clock"
	"campus_fleet/internal/config"
	"campus_fleet/internal/logger"
	"campus_fleet/internal/middleware"
	"campus_fleet/internal/notify"
	"campus_fleet/internal/reservation"
	"campus_fleet/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Outbound notification worker
	queue := notify.NewQueue(notify.NewLogSender(), 64)
	queue.Start()
	defer queue.Stop()

	// Reservation engine
	clk := clock.System{}
	svc := reservation.NewService(
		reservation.NewGormRepository(db),
		clk,
		notify.NewReservationNotifier(queue),
		audit.NewRecorder(db),
	)

	// Setup Gin router
	r := routes.SetupRouter(routes.Deps{
		DB:           db,
		Reservations: svc,
		Clock:        clk,
	})

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.GetEnv("PORT", "8080")
	log.Println("🚀 Server running at " + addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
