package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus_fleet/internal/middleware"
	"campus_fleet/internal/models"
)

type RepairController struct {
	db *gorm.DB
}

func NewRepairController(db *gorm.DB) *RepairController {
	return &RepairController{db: db}
}

// OpenTicket opens a repair ticket and parks the vehicle in maintenance
// so it stops being bookable.
func (r *RepairController) OpenTicket(c *gin.Context) {
	userID, _ := middleware.ActorFromContext(c)

	var input struct {
		VehicleID   uint   `json:"vehicle_id" binding:"required"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket input: " + err.Error()})
		return
	}

	var ticket models.RepairTicket
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, input.VehicleID).Error; err != nil {
			return err
		}

		ticket = models.RepairTicket{
			VehicleID:   input.VehicleID,
			OpenedBy:    userID,
			Description: input.Description,
			Status:      models.RepairOpen,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}

		vehicle.State = models.VehicleMaintenance
		return tx.Save(&vehicle).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open ticket: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// AddPart consumes spare-part stock against an open ticket.
func (r *RepairController) AddPart(c *gin.Context) {
	ticketID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format."})
		return
	}

	var input struct {
		SparePartID uint `json:"spare_part_id" binding:"required"`
		Quantity    int  `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var usage models.RepairPart
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.RepairTicket
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			return err
		}
		if ticket.Status == models.RepairClosed {
			return errors.New("ticket is closed")
		}

		var part models.SparePart
		if err := tx.First(&part, input.SparePartID).Error; err != nil {
			return err
		}
		if part.Quantity < input.Quantity {
			return errors.New("insufficient stock")
		}
		part.Quantity -= input.Quantity
		if err := tx.Save(&part).Error; err != nil {
			return err
		}

		usage = models.RepairPart{
			RepairTicketID: ticket.ID,
			SparePartID:    part.ID,
			Quantity:       input.Quantity,
		}
		return tx.Create(&usage).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket or spare part not found"})
		case err.Error() == "ticket is closed" || err.Error() == "insufficient stock":
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add part: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"usage": usage})
}

// CloseTicket closes the ticket and returns the vehicle to service.
func (r *RepairController) CloseTicket(c *gin.Context) {
	ticketID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format."})
		return
	}

	var input struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&input)

	var ticket models.RepairTicket
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			return err
		}
		if ticket.Status == models.RepairClosed {
			return errors.New("ticket is closed")
		}

		now := time.Now()
		ticket.Status = models.RepairClosed
		ticket.ClosedAt = &now
		if input.Notes != "" {
			ticket.Notes = input.Notes
		}
		if err := tx.Save(&ticket).Error; err != nil {
			return err
		}

		var vehicle models.Vehicle
		if err := tx.First(&vehicle, ticket.VehicleID).Error; err != nil {
			return err
		}
		if vehicle.State == models.VehicleMaintenance {
			vehicle.State = models.VehicleAvailable
			return tx.Save(&vehicle).Error
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		case err.Error() == "ticket is closed":
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close ticket: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

func (r *RepairController) ListTickets(c *gin.Context) {
	q := r.db.Model(&models.RepairTicket{}).Preload("Parts")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if vehicle := c.Query("vehicle_id"); vehicle != "" {
		q = q.Where("vehicle_id = ?", vehicle)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing tickets: " + err.Error()})
		return
	}

	page, size := pagination(c)
	var tickets []models.RepairTicket
	if err := q.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing tickets: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tickets, "total": total, "page": page, "page_size": size})
}
