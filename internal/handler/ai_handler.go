package handler

import (
	"net/http"
	"recipeshare/backend/internal/ai"

	"github.com/gin-gonic/gin"
)

// AI is the recipe suggestion client, wired in from main. When nil the
// endpoint reports that suggestions are unavailable.
var AI *ai.Client

// SuggestionInput defines the structure for requesting recipe suggestions.
type SuggestionInput struct {
	Ingredients string `json:"ingredients" binding:"required" example:"chicken, rice, broccoli"`
}

// SuggestionResponse wraps the generated suggestions.
type SuggestionResponse struct {
	Suggestions []ai.Suggestion `json:"suggestions"`
}

// GenerateSuggestions godoc
// @Summary      Generate recipe suggestions
// @Description  Asks the language model for recipe ideas built around the given ingredients. Failures of the upstream API never affect stored data.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SuggestionInput true "Ingredients to build around"
// @Success      200 {object} SuggestionResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse "Upstream generation failed"
// @Failure      503 {object} ErrorResponse "Suggestions not configured"
// @Router       /ai/suggestions [post]
func GenerateSuggestions(c *gin.Context) {
	if AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe suggestions are not configured"})
		return
	}

	var input SuggestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := AI.GenerateSuggestions(c.Request.Context(), input.Ingredients)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate recipe suggestions"})
		return
	}

	c.JSON(http.StatusOK, SuggestionResponse{Suggestions: suggestions})
}
