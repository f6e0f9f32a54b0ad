package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_fleet/internal/models"
)

type DriverController struct {
	db *gorm.DB
}

func NewDriverController(db *gorm.DB) *DriverController {
	return &DriverController{db: db}
}

func (d *DriverController) ListDrivers(c *gin.Context) {
	q := d.db.Model(&models.Driver{})
	if enabled := c.Query("enabled"); enabled == "true" {
		q = q.Where("enabled = ?", true)
	} else if enabled == "false" {
		q = q.Where("enabled = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}

	page, size := pagination(c)
	var drivers []models.Driver
	if err := q.Order("id").Offset((page - 1) * size).Limit(size).Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drivers, "total": total, "page": page, "page_size": size})
}

func (d *DriverController) GetDriver(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := d.db.Preload("User").First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		logrus.WithError(err).Error("Error fetching driver from database")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver data."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

type updateDriverInput struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"license_number"`
}

func (d *DriverController) UpdateDriver(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := d.db.First(&driver, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	var input updateDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Phone != nil {
		driver.Phone = *input.Phone
	}
	if input.LicenseNumber != nil {
		driver.LicenseNumber = *input.LicenseNumber
	}

	if err := d.db.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// SetDriverEnabled flips whether the driver can be assigned to new
// reservations. Existing reservations are untouched.
func (d *DriverController) SetDriverEnabled(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var payload struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body format: " + err.Error()})
		return
	}

	var driver models.Driver
	if err := d.db.First(&driver, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	driver.Enabled = *payload.Enabled
	if err := d.db.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"driver": driver})
}
