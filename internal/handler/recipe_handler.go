package handler

import (
	"errors"
	"fmt"
	"net/http"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/models"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RecipeInput defines the editable fields of a recipe.
type RecipeInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	Steps       []string `json:"steps" binding:"required,min=1"`
	ImageKeys   []string `json:"image_keys"`
	Cuisine     string   `json:"cuisine" binding:"required"`
	Tags        []string `json:"tags"`
	PrepTime    int      `json:"prep_time" binding:"required,gt=0"`
	Servings    int      `json:"servings" binding:"required,gt=0"`
}

// RatingInput defines the structure for submitting a rating.
type RatingInput struct {
	Rating int `json:"rating" binding:"required" example:"5"`
}

// RecipeAuthorResponse is the author summary embedded in recipe responses.
type RecipeAuthorResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RecipeResponse defines the structure for a recipe.
type RecipeResponse struct {
	ID            uint                 `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Ingredients   []string             `json:"ingredients"`
	Steps         []string             `json:"steps"`
	ImageURLs     []ImageURL           `json:"image_urls"`
	Cuisine       string               `json:"cuisine"`
	Tags          []string             `json:"tags"`
	PrepTime      int                  `json:"prep_time"`
	Servings      int                  `json:"servings"`
	IsApproved    bool                 `json:"is_approved"`
	AverageRating float64              `json:"average_rating"`
	TotalRatings  int64                `json:"total_ratings"`
	Version       int                  `json:"version"`
	IsFavorite    bool                 `json:"is_favorite"`
	MyRating      int                  `json:"my_rating,omitempty"`
	Author        RecipeAuthorResponse `json:"author"`
	CreatedAt     time.Time            `json:"created_at"`
}

// PaginatedRecipeResponse defines the structure for a paginated list of recipes.
type PaginatedRecipeResponse struct {
	Data []RecipeResponse `json:"data"`
	Meta PaginationMeta   `json:"meta"`
}

func newRecipeResponse(c *gin.Context, recipe models.Recipe, viewerID uint) RecipeResponse {
	var authorProfile models.Profile
	database.DB.Where("user_id = ?", recipe.AuthorID).First(&authorProfile)

	isFavorite := false
	myRating := 0
	if viewerID != 0 {
		var favorite models.Favorite
		err := database.DB.
			Where("user_id = ? AND recipe_id = ?", viewerID, recipe.ID).
			First(&favorite).Error
		isFavorite = err == nil

		var rating models.Rating
		if err := database.DB.
			Where("user_id = ? AND recipe_id = ?", viewerID, recipe.ID).
			First(&rating).Error; err == nil {
			myRating = rating.Rating
		}
	}

	return RecipeResponse{
		ID:            recipe.ID,
		Title:         recipe.Title,
		Description:   recipe.Description,
		Ingredients:   recipe.Ingredients,
		Steps:         recipe.Steps,
		ImageURLs:     resolveImageURLs(c, recipe.ImageKeys),
		Cuisine:       recipe.Cuisine,
		Tags:          recipe.Tags,
		PrepTime:      recipe.PrepTime,
		Servings:      recipe.Servings,
		IsApproved:    recipe.IsApproved,
		AverageRating: recipe.AverageRating,
		TotalRatings:  recipe.TotalRatings,
		Version:       recipe.Version,
		IsFavorite:    isFavorite,
		MyRating:      myRating,
		Author: RecipeAuthorResponse{
			ID:        recipe.AuthorID,
			Username:  authorProfile.Username,
			AvatarURL: resolveImageURL(c, authorProfile.AvatarKey),
		},
		CreatedAt: recipe.CreatedAt,
	}
}

// endregion

// region --- Recipe Handlers ---

// CreateRecipe godoc
// @Summary      Create a new recipe
// @Description  Creates a recipe owned by the caller and records version 1 in the edit history. New recipes await admin approval.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body RecipeInput true "Recipe Info"
// @Success      201  {object}  RecipeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes [post]
func CreateRecipe(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe := models.Recipe{
		Title:       input.Title,
		Description: input.Description,
		Ingredients: input.Ingredients,
		Steps:       input.Steps,
		ImageKeys:   input.ImageKeys,
		Cuisine:     input.Cuisine,
		Tags:        input.Tags,
		PrepTime:    input.PrepTime,
		Servings:    input.Servings,
		AuthorID:    userID.(uint),
		Version:     1,
	}
	if err := database.DB.Create(&recipe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	if err := snapshotRecipeVersion(recipe, userID.(uint)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record recipe version"})
		return
	}

	c.JSON(http.StatusCreated, newRecipeResponse(c, recipe, userID.(uint)))
}

// GetRecipes godoc
// @Summary      Get a list of recipes
// @Description  Retrieves a paginated list of approved recipes, with optional title search, cuisine, author, and favorites-only filters. Works without a token; favorites_only requires one.
// @Tags         recipes
// @Produce      json
// @Param        q        query  string  false  "Search query for recipe title"
// @Param        cuisine  query  string  false  "Filter by cuisine"
// @Param        author_id query int    false  "Filter by recipe author"
// @Param        favorites_only query bool false "Return only favorited recipes"
// @Param        page     query  int     false  "Page number" default(1)
// @Param        limit    query  int     false  "Items per page" default(10)
// @Success      200  {object}  PaginatedRecipeResponse
// @Router       /recipes [get]
func GetRecipes(c *gin.Context) {
	viewerID := viewerFrom(c)
	page, limit := pageParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
	offset := (page - 1) * limit

	searchQuery := c.Query("q")
	cuisine := c.Query("cuisine")
	authorID, _ := strconv.Atoi(c.Query("author_id"))
	favoritesOnly, _ := strconv.ParseBool(c.Query("favorites_only"))

	dbQuery := database.DB.Model(&models.Recipe{}).Where("is_approved = ?", true)

	if searchQuery != "" {
		dbQuery = dbQuery.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(searchQuery)+"%")
	}
	if cuisine != "" {
		dbQuery = dbQuery.Where("cuisine = ?", cuisine)
	}
	if authorID > 0 {
		dbQuery = dbQuery.Where("author_id = ?", authorID)
	}

	if favoritesOnly {
		if viewerID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Must be logged in"})
			return
		}
		var favRecipeIDs []uint
		database.DB.Model(&models.Favorite{}).
			Where("user_id = ?", viewerID).
			Pluck("recipe_id", &favRecipeIDs)
		if len(favRecipeIDs) == 0 {
			c.JSON(http.StatusOK, NewPaginatedResponse([]RecipeResponse{}, 0, page, limit))
			return
		}
		dbQuery = dbQuery.Where("id IN (?)", favRecipeIDs)
	}

	var totalItems int64
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count recipes"})
		return
	}

	var recipes []models.Recipe
	if err := dbQuery.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recipes"})
		return
	}

	responses := make([]RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		responses = append(responses, newRecipeResponse(c, recipe, viewerID))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}

// GetRecipeByID godoc
// @Summary      Get a single recipe by ID
// @Description  Retrieves one recipe with author info and image URLs. Unapproved recipes are visible only to their author.
// @Tags         recipes
// @Produce      json
// @Param        id path int true "Recipe ID"
// @Success      200 {object} RecipeResponse
// @Failure      404 {object} ErrorResponse "Recipe not found"
// @Router       /recipes/{id} [get]
func GetRecipeByID(c *gin.Context) {
	viewerID := viewerFrom(c)
	id, _ := strconv.Atoi(c.Param("id"))

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if !recipe.IsApproved && recipe.AuthorID != viewerID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(c, recipe, viewerID))
}

// UpdateRecipe godoc
// @Summary      Update a recipe
// @Description  Replaces the editable fields of a recipe the caller authored, increments its version, and appends a snapshot to the edit history.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Recipe ID"
// @Param        input body      RecipeInput true  "New Recipe Info"
// @Success      200   {object}  RecipeResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not the author"
// @Failure      404   {object}  ErrorResponse "Recipe not found"
// @Router       /recipes/{id} [put]
func UpdateRecipe(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if recipe.AuthorID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a recipe"})
		return
	}

	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe.Title = input.Title
	recipe.Description = input.Description
	recipe.Ingredients = input.Ingredients
	recipe.Steps = input.Steps
	recipe.ImageKeys = input.ImageKeys
	recipe.Cuisine = input.Cuisine
	recipe.Tags = input.Tags
	recipe.PrepTime = input.PrepTime
	recipe.Servings = input.Servings
	recipe.Version++

	if err := database.DB.Save(&recipe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	if err := snapshotRecipeVersion(recipe, userID.(uint)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record recipe version"})
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(c, recipe, userID.(uint)))
}

// SubmitRating godoc
// @Summary      Rate a recipe
// @Description  Submits a 1-5 star rating. Resubmitting overwrites the caller's previous rating; the recipe's stored average and count are recomputed from all rating rows.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Recipe ID"
// @Param        input body      RatingInput true  "Rating"
// @Success      200   {object}  map[string]interface{} "{"average_rating": 4.5, "total_ratings": 2}"
// @Failure      400   {object}  ErrorResponse "Rating out of range"
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Recipe not found"
// @Router       /recipes/{id}/rating [post]
func SubmitRating(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	// Upsert keyed by (user, recipe): overwrite in place, never a second row.
	var existing models.Rating
	err := database.DB.
		Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := database.DB.Model(&existing).Update("rating", input.Rating).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rating"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := insertRating(userID.(uint), recipe.ID, input.Rating); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing rating"})
		return
	}

	average, total, err := recomputeRecipeAggregate(recipe.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute rating"})
		return
	}

	if recipe.AuthorID != userID.(uint) {
		createNotification(recipe.AuthorID, userID.(uint), &recipe.ID,
			models.NotificationRating,
			fmt.Sprintf("Someone rated your recipe %q", recipe.Title))
	}

	c.JSON(http.StatusOK, gin.H{
		"average_rating": average,
		"total_ratings":  total,
	})
}

// ToggleFavorite godoc
// @Summary      Toggle a recipe in favorites
// @Description  Adds or removes a recipe from the caller's favorites. Favoriting notifies no one.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Recipe ID"
// @Success      200 {object} map[string]bool "{"is_favorite": true}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Recipe not found"
// @Router       /recipes/{id}/favorite [post]
func ToggleFavorite(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var existing models.Favorite
	err := database.DB.
		Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
		First(&existing).Error
	if err == nil {
		if err := database.DB.
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
			Delete(&models.Favorite{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from favorites"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"is_favorite": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check favorite state"})
		return
	}

	favorite := models.Favorite{
		UserID:   userID.(uint),
		RecipeID: recipe.ID,
	}
	if err := database.DB.Create(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": true})
}

// endregion

// region --- Admin Handlers ---

// ApproveRecipe godoc
// @Summary      Approve a recipe
// @Description  Marks a recipe as approved, making it publicly visible, and notifies its author.
// @Tags         admin-recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Recipe ID"
// @Success      200 {object} map[string]string "{"message": "Recipe approved"}"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Recipe not found"
// @Router       /admin/recipes/{id}/approve [post]
func ApproveRecipe(c *gin.Context) {
	adminID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var recipe models.Recipe
	if err := database.DB.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if !recipe.IsApproved {
		if err := database.DB.Model(&recipe).Update("is_approved", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve recipe"})
			return
		}

		if recipe.AuthorID != adminID.(uint) {
			createNotification(recipe.AuthorID, adminID.(uint), &recipe.ID,
				models.NotificationRecipeApproved,
				fmt.Sprintf("Your recipe %q has been approved", recipe.Title))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe approved"})
}

// endregion

// region --- Helpers ---

// insertRating creates the caller's first rating row for a recipe. Two
// concurrent first ratings from the same user can both pass the handler's
// existence check; the loser's insert hits the (user_id, recipe_id) unique
// index and is recovered as an in-place update of the winner's row.
func insertRating(userID, recipeID uint, value int) error {
	rating := models.Rating{
		RecipeID: recipeID,
		UserID:   userID,
		Rating:   value,
	}
	err := database.DB.Create(&rating).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return database.DB.Model(&models.Rating{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Update("rating", value).Error
	}
	return err
}

// recomputeRecipeAggregate re-derives the stored rating aggregate from the
// full set of rating rows for a recipe. Recomputing from scratch instead of
// adjusting the running average keeps the aggregate self-correcting under
// concurrent raters: a stale write is overwritten by the next recompute.
func recomputeRecipeAggregate(recipeID uint) (average float64, total int64, err error) {
	var ratings []models.Rating
	if err := database.DB.Where("recipe_id = ?", recipeID).Find(&ratings).Error; err != nil {
		return 0, 0, err
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}

	total = int64(len(ratings))
	if total > 0 {
		average = float64(sum) / float64(total)
	}

	err = database.DB.Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_ratings":  total,
		}).Error
	return average, total, err
}

// snapshotRecipeVersion appends an immutable copy of the recipe's editable
// fields to the edit history.
func snapshotRecipeVersion(recipe models.Recipe, editedBy uint) error {
	version := models.RecipeVersion{
		RecipeID:    recipe.ID,
		Version:     recipe.Version,
		Title:       recipe.Title,
		Description: recipe.Description,
		Ingredients: recipe.Ingredients,
		Steps:       recipe.Steps,
		ImageKeys:   recipe.ImageKeys,
		Cuisine:     recipe.Cuisine,
		Tags:        recipe.Tags,
		PrepTime:    recipe.PrepTime,
		Servings:    recipe.Servings,
		EditedBy:    editedBy,
	}
	return database.DB.Create(&version).Error
}

// endregion
