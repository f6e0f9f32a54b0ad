package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus_fleet/internal/models"
)

type VehicleController struct {
	db *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{db: db}
}

// CreateVehicle registers a new fleet vehicle; state defaults to available.
func (v *VehicleController) CreateVehicle(c *gin.Context) {
	var input struct {
		PlateNumber  string `json:"plate_number" binding:"required"`
		Registration string `json:"registration"`
		Brand        string `json:"brand" binding:"required"`
		Model        string `json:"model" binding:"required"`
		Year         int    `json:"year"`
		Capacity     int    `json:"capacity" binding:"required,min=1"`
		Mileage      int    `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		PlateNumber:  input.PlateNumber,
		Registration: input.Registration,
		Brand:        input.Brand,
		VehicleModel: input.Model,
		Year:         input.Year,
		Capacity:     input.Capacity,
		Mileage:      input.Mileage,
		State:        models.VehicleAvailable,
	}

	if err := v.db.Create(&vehicle).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "plate number already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func (v *VehicleController) ListVehicles(c *gin.Context) {
	q := v.db.Model(&models.Vehicle{})
	if state := c.Query("state"); state != "" {
		q = q.Where("state = ?", state)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	page, size := pagination(c)
	var vehicles []models.Vehicle
	if err := q.Order("id").Offset((page - 1) * size).Limit(size).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles, "total": total, "page": page, "page_size": size})
}

func (v *VehicleController) GetVehicle(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := v.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func (v *VehicleController) UpdateVehicle(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := v.db.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	var input struct {
		Registration *string `json:"registration"`
		Brand        *string `json:"brand"`
		Model        *string `json:"model"`
		Year         *int    `json:"year"`
		Capacity     *int    `json:"capacity"`
		Mileage      *int    `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	if input.Registration != nil {
		vehicle.Registration = *input.Registration
	}
	if input.Brand != nil {
		vehicle.Brand = *input.Brand
	}
	if input.Model != nil {
		vehicle.VehicleModel = *input.Model
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
			return
		}
		vehicle.Capacity = *input.Capacity
	}
	if input.Mileage != nil {
		vehicle.Mileage = *input.Mileage
	}

	if err := v.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// SetVehicleState moves a vehicle between available/maintenance/retired.
func (v *VehicleController) SetVehicleState(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var payload struct {
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body format: " + err.Error()})
		return
	}
	switch payload.State {
	case models.VehicleAvailable, models.VehicleReserved, models.VehicleMaintenance, models.VehicleRetired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vehicle state: " + payload.State})
		return
	}

	var vehicle models.Vehicle
	if err := v.db.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	vehicle.State = payload.State
	if err := v.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle state: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func pagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
