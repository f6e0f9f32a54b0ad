package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"campus_fleet/internal/apperror"
	"campus_fleet/internal/clock"
	"campus_fleet/internal/middleware"
	"campus_fleet/internal/models"
	"campus_fleet/internal/reservation"
)

type ReservationController struct {
	svc   *reservation.Service
	clock clock.Clock
}

func NewReservationController(svc *reservation.Service, clk clock.Clock) *ReservationController {
	return &ReservationController{svc: svc, clock: clk}
}

// respondError translates engine errors into HTTP responses.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
		return
	}
	logrus.WithError(err).Error("reservation operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func actor(c *gin.Context) reservation.Actor {
	userID, role := middleware.ActorFromContext(c)
	return reservation.Actor{UserID: userID, Role: role}
}

type createReservationInput struct {
	VehicleID      uint   `json:"vehicle_id"`
	DriverID       *uint  `json:"driver_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	UnitName       string `json:"unit_name"`
	Reason         string `json:"reason"`
	PassengerCount int    `json:"passenger_count"`
}

func (r *ReservationController) Create(c *gin.Context) {
	var input createReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation input: " + err.Error()})
		return
	}

	act := actor(c)
	res, err := r.svc.Create(c.Request.Context(), reservation.CreateInput{
		RequesterID:    act.UserID,
		VehicleID:      input.VehicleID,
		DriverID:       input.DriverID,
		Date:           input.Date,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Origin:         input.Origin,
		Destination:    input.Destination,
		UnitName:       input.UnitName,
		Reason:         input.Reason,
		PassengerCount: input.PassengerCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

func (r *ReservationController) Approve(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	res, err := r.svc.Approve(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

type reasonInput struct {
	Reason string `json:"reason"`
}

func (r *ReservationController) Reject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	var input reasonInput
	_ = c.ShouldBindJSON(&input)

	res, err := r.svc.Reject(c.Request.Context(), actor(c), id, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

func (r *ReservationController) Cancel(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	var input reasonInput
	_ = c.ShouldBindJSON(&input)

	res, err := r.svc.Cancel(c.Request.Context(), actor(c), id, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

func (r *ReservationController) Complete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	res, err := r.svc.Complete(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

type updateWindowInput struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *ReservationController) UpdateWindow(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	var input updateWindowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	res, err := r.svc.UpdateWindow(c.Request.Context(), actor(c), id, input.Date, input.StartTime, input.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

func (r *ReservationController) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format."})
		return
	}

	res, err := r.svc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToCalendarEntry(*res, r.clock.Now())})
}

// CheckAvailability answers GET /reservations/availability?kind=VEHICLE&id=3&date=...&start=...&end=...
func (r *ReservationController) CheckAvailability(c *gin.Context) {
	kind := reservation.ResourceKind(c.DefaultQuery("kind", string(reservation.ResourceVehicle)))
	id, err := parseID(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource id."})
		return
	}

	available, err := r.svc.CheckAvailability(c.Request.Context(), kind, id,
		c.Query("date"), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

// Calendar answers GET /reservations/calendar?date_from=...&date_to=...&vehicle_id=...
func (r *ReservationController) Calendar(c *gin.Context) {
	var vehicleID uint
	if v := c.Query("vehicle_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle_id."})
			return
		}
		vehicleID = id
	}

	entries, err := r.svc.ListCalendar(c.Request.Context(), c.Query("date_from"), c.Query("date_to"), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// ListMine pages the authenticated requester's reservations.
func (r *ReservationController) ListMine(c *gin.Context) {
	page, size := pagination(c)
	act := actor(c)

	list, total, err := r.svc.List(c.Request.Context(), reservation.ListFilter{
		RequesterID: act.UserID,
		Page:        page,
		PageSize:    size,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	now := r.clock.Now()
	entries := make([]reservation.CalendarEntry, 0, len(list))
	for _, res := range list {
		entries = append(entries, reservation.ToCalendarEntry(res, now))
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total, "page": page, "page_size": size})
}

// ListAll pages every reservation for the admin overview.
func (r *ReservationController) ListAll(c *gin.Context) {
	page, size := pagination(c)

	filter := reservation.ListFilter{Page: page, PageSize: size}
	if v := c.Query("vehicle_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle_id."})
			return
		}
		filter.VehicleID = id
	}
	if s := c.Query("state"); s != "" {
		filter.State = models.ReservationState(s)
	}

	list, total, err := r.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	now := r.clock.Now()
	entries := make([]reservation.CalendarEntry, 0, len(list))
	for _, res := range list {
		entries = append(entries, reservation.ToCalendarEntry(res, now))
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total, "page": page, "page_size": size})
}
