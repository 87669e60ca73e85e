package handler

import (
	"fmt"
	"net/http"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/models"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CommentInput defines the structure for posting a comment.
type CommentInput struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// CommentResponse defines the structure for a single comment.
type CommentResponse struct {
	ID              uint                 `json:"id"`
	RecipeID        uint                 `json:"recipe_id"`
	Content         string               `json:"content"`
	ParentCommentID *uint                `json:"parent_comment_id,omitempty"`
	Author          RecipeAuthorResponse `json:"author"`
	CreatedAt       time.Time            `json:"created_at"`
}

func newCommentResponse(c *gin.Context, comment models.Comment) CommentResponse {
	var authorProfile models.Profile
	database.DB.Where("user_id = ?", comment.UserID).First(&authorProfile)

	return CommentResponse{
		ID:              comment.ID,
		RecipeID:        comment.RecipeID,
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		Author: RecipeAuthorResponse{
			ID:        comment.UserID,
			Username:  authorProfile.Username,
			AvatarURL: resolveImageURL(c, authorProfile.AvatarKey),
		},
		CreatedAt: comment.CreatedAt,
	}
}

// endregion

// GetComments godoc
// @Summary      List comments on a recipe
// @Description  Retrieves all comments for a recipe, newest first, with author info.
// @Tags         comments
// @Produce      json
// @Param        id path int true "Recipe ID"
// @Success      200 {array} CommentResponse
// @Failure      404 {object} ErrorResponse "Recipe not found"
// @Router       /recipes/{id}/comments [get]
func GetComments(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var comments []models.Comment
	if err := database.DB.
		Where("recipe_id = ?", recipe.ID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, newCommentResponse(c, comment))
	}

	c.JSON(http.StatusOK, responses)
}

// AddComment godoc
// @Summary      Comment on a recipe
// @Description  Adds a comment (optionally threaded under a parent comment) and notifies the recipe's author.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Recipe ID"
// @Param        input body      CommentInput true  "Comment"
// @Success      201   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse "Empty content"
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Recipe not found"
// @Router       /recipes/{id}/comments [post]
func AddComment(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment cannot be empty"})
		return
	}

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	// ParentCommentID is stored as supplied; a dangling reference is a
	// display-layer concern.
	comment := models.Comment{
		RecipeID:        recipe.ID,
		UserID:          userID.(uint),
		Content:         content,
		ParentCommentID: input.ParentCommentID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	if recipe.AuthorID != userID.(uint) {
		createNotification(recipe.AuthorID, userID.(uint), &recipe.ID,
			models.NotificationComment,
			fmt.Sprintf("Someone commented on your recipe %q", recipe.Title))
	}

	c.JSON(http.StatusCreated, newCommentResponse(c, comment))
}
