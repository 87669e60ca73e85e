package handler

import (
	"errors"
	"fmt"
	"net/http"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/models"
	"recipeshare/backend/pkg/jwt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email" example:"test@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"password123"`
	DisplayName string `json:"display_name" example:"Test User"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateProfileInput carries a partial profile update. Only the fields that
// are present in the request body are applied; nil means "leave unchanged".
type UpdateProfileInput struct {
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	AvatarKey *string `json:"avatar_key"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Username       string `json:"username" example:"testuser"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	IsFollowedByMe bool   `json:"is_followed_by_me"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Email          string `json:"email" example:"test@example.com"`
	Username       string `json:"username" example:"testuser"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	IsAdmin        bool   `json:"is_admin"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// The unique index on email is the authority here; a pre-check would
	// still race with a concurrent registration.
	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		DisplayName:  input.DisplayName,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	if _, err := ensureProfile(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Safe to call on every login; returns the existing profile when present.
	if _, err := ensureProfile(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user, creating the profile if it does not exist yet.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	profile, err := ensureProfile(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(c, user, *profile))
}

// UpdateProfile godoc
// @Summary      Update current user's profile
// @Description  Applies a partial update to the caller's profile; only supplied fields are changed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Fields to update"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Username already taken"
// @Router       /users/me [patch]
func UpdateProfile(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := ensureProfile(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	updates := map[string]interface{}{}
	if input.Username != nil {
		trimmed := strings.TrimSpace(*input.Username)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username cannot be empty"})
			return
		}
		updates["username"] = trimmed
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.AvatarKey != nil {
		updates["avatar_key"] = *input.AvatarKey
	}

	if len(updates) > 0 {
		if err := database.DB.Model(profile).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		if err := database.DB.First(profile, profile.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload profile"})
			return
		}
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(c, user, *profile))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user, with follower and following counts. Works without a token; a token personalizes is_followed_by_me.
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	viewerID := viewerFrom(c)
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var profile models.Profile
	if err := database.DB.Where("user_id = ?", targetUser.ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, buildPublicUserResponse(c, targetUser, profile, viewerID))
}

// ToggleFollow godoc
// @Summary      Follow or unfollow a user
// @Description  Toggles the caller's follow of the target user. A new follow notifies the target; an unfollow does not.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]bool "{"is_following": true}"
// @Failure      400  {object}  ErrorResponse "Cannot follow yourself"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Router       /users/{id}/follow [post]
func ToggleFollow(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Checked before any lookup.
	if viewerID.(uint) == uint(targetUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var existing models.Follow
	err = database.DB.
		Where("follower_id = ? AND following_id = ?", viewerID, targetUser.ID).
		First(&existing).Error
	if err == nil {
		if err := database.DB.
			Where("follower_id = ? AND following_id = ?", viewerID, targetUser.ID).
			Delete(&models.Follow{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"is_following": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check follow state"})
		return
	}

	follow := models.Follow{
		FollowerID:  viewerID.(uint),
		FollowingID: targetUser.ID,
	}
	if err := database.DB.Create(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
		return
	}

	createNotification(targetUser.ID, viewerID.(uint), nil,
		models.NotificationFollow, "Someone started following you")

	c.JSON(http.StatusOK, gin.H{"is_following": true})
}

// endregion

// region --- Helpers ---

// ensureProfile returns the profile for a user, creating it on first use.
// The create relies on the unique index on user_id: losing the first-login
// race yields a duplicate-key error, which is treated as "profile already
// exists, re-fetch" rather than a failure.
func ensureProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := database.DB.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	profile = models.Profile{
		UserID:   userID,
		Username: defaultUsername(user),
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Profile
			if ferr := database.DB.Where("user_id = ?", userID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
			// The conflict was on the username, not the user. Retry once with
			// a name made unique by the user ID.
			retry := models.Profile{
				UserID:   userID,
				Username: fmt.Sprintf("%s-%d", defaultUsername(user), userID),
			}
			if err := database.DB.Create(&retry).Error; err != nil {
				return nil, err
			}
			return &retry, nil
		}
		return nil, err
	}
	return &profile, nil
}

// defaultUsername derives an initial username from the display name, then
// the email local-part, then a literal fallback.
func defaultUsername(user models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return "User"
}

// Follower and following counts are derived by counting rows on every read.
// They are deliberately not stored counters, so they cannot drift from the
// underlying follow rows.
func followCounts(userID uint) (followers, following int64) {
	database.DB.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&followers)
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following)
	return followers, following
}

func buildPublicUserResponse(c *gin.Context, targetUser models.User, profile models.Profile, viewerID uint) PublicUserResponse {
	followers, following := followCounts(targetUser.ID)

	isFollowed := false
	if viewerID != 0 && viewerID != targetUser.ID {
		var follow models.Follow
		err := database.DB.
			Where("follower_id = ? AND following_id = ?", viewerID, targetUser.ID).
			First(&follow).Error
		isFollowed = err == nil
	}

	return PublicUserResponse{
		ID:             targetUser.ID,
		Username:       profile.Username,
		Bio:            profile.Bio,
		AvatarURL:      resolveImageURL(c, profile.AvatarKey),
		FollowerCount:  followers,
		FollowingCount: following,
		IsFollowedByMe: isFollowed,
	}
}

func buildPrivateUserResponse(c *gin.Context, user models.User, profile models.Profile) PrivateUserResponse {
	followers, following := followCounts(user.ID)

	return PrivateUserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Username:       profile.Username,
		Bio:            profile.Bio,
		AvatarURL:      resolveImageURL(c, profile.AvatarKey),
		IsAdmin:        profile.IsAdmin,
		FollowerCount:  followers,
		FollowingCount: following,
	}
}

// endregion
