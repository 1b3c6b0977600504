package handlers

import (
	"net/http"
	"strings"

	"club-tracker/config"
	"club-tracker/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PresentationInput struct {
	Symbol string `json:"symbol" binding:"required"`
	Title  string `json:"title" binding:"required"`
	Thesis string `json:"thesis"`
}

// CreatePresentation submits a stock pitch for the club to vote on.
func CreatePresentation(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	var input PresentationInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	presentation := models.Presentation{
		UserID: userID,
		Symbol: strings.ToUpper(strings.TrimSpace(input.Symbol)),
		Title:  input.Title,
		Thesis: input.Thesis,
	}

	if err := config.DB.Create(&presentation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit presentation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Presentation submitted successfully", "id": presentation.ID})
}

// ListPresentations returns all presentations with their vote tallies.
func ListPresentations(c *gin.Context) {
	var presentations []struct {
		models.Presentation
		Upvotes   int64 `json:"upvotes"`
		Downvotes int64 `json:"downvotes"`
	}

	query := `
		SELECT p.*,
		COUNT(v.id) FILTER (WHERE v.direction = 'up' AND v.deleted_at IS NULL) as upvotes,
		COUNT(v.id) FILTER (WHERE v.direction = 'down' AND v.deleted_at IS NULL) as downvotes
		FROM presentations p
		LEFT JOIN votes v ON v.presentation_id = p.id
		WHERE p.deleted_at IS NULL
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`

	if err := config.DB.Raw(query).Scan(&presentations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch presentations"})
		return
	}

	c.JSON(http.StatusOK, presentations)
}

type VoteInput struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// VotePresentation records one member's vote; voting again replaces the
// earlier choice.
func VotePresentation(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	presentationID := c.Param("id")

	var input VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var presentation models.Presentation
	if err := config.DB.First(&presentation, presentationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Presentation not found"})
		return
	}

	var vote models.Vote
	err := config.DB.Where("user_id = ? AND presentation_id = ?", userID, presentation.ID).First(&vote).Error
	switch {
	case err == nil:
		vote.Direction = input.Direction
		if err := config.DB.Save(&vote).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vote"})
			return
		}
	case err == gorm.ErrRecordNotFound:
		vote = models.Vote{
			UserID:         userID,
			PresentationID: presentation.ID,
			Direction:      input.Direction,
		}
		if err := config.DB.Create(&vote).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded successfully"})
}
