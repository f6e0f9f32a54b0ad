package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus_fleet/internal/models"
)

type SparePartController struct {
	db *gorm.DB
}

func NewSparePartController(db *gorm.DB) *SparePartController {
	return &SparePartController{db: db}
}

func (s *SparePartController) CreatePart(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Quantity int    `json:"quantity"`
		MinStock int    `json:"min_stock"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spare part input: " + err.Error()})
		return
	}

	part := models.SparePart{
		Name:     input.Name,
		Code:     input.Code,
		Quantity: input.Quantity,
		MinStock: input.MinStock,
		Location: input.Location,
	}
	if err := s.db.Create(&part).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "part code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create spare part: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"part": part})
}

func (s *SparePartController) ListParts(c *gin.Context) {
	q := s.db.Model(&models.SparePart{})
	if c.Query("low_stock") == "true" {
		q = q.Where("quantity <= min_stock")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing spare parts: " + err.Error()})
		return
	}

	page, size := pagination(c)
	var parts []models.SparePart
	if err := q.Order("name").Offset((page - 1) * size).Limit(size).Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing spare parts: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": parts, "total": total, "page": page, "page_size": size})
}

func (s *SparePartController) UpdatePart(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID format."})
		return
	}

	var part models.SparePart
	if err := s.db.First(&part, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Spare part not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	var input struct {
		Name     *string `json:"name"`
		MinStock *int    `json:"min_stock"`
		Location *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}
	if input.Name != nil {
		part.Name = *input.Name
	}
	if input.MinStock != nil {
		part.MinStock = *input.MinStock
	}
	if input.Location != nil {
		part.Location = *input.Location
	}

	if err := s.db.Save(&part).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update spare part: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"part": part})
}

// AdjustStock applies a signed delta to the part quantity, refusing to
// take stock below zero.
func (s *SparePartController) AdjustStock(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid part ID format."})
		return
	}

	var payload struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body format: " + err.Error()})
		return
	}

	var part models.SparePart
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&part, id).Error; err != nil {
			return err
		}
		if part.Quantity+payload.Delta < 0 {
			return errors.New("stock cannot go negative")
		}
		part.Quantity += payload.Delta
		return tx.Save(&part).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Spare part not found"})
			return
		}
		if err.Error() == "stock cannot go negative" {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"part": part})
}
