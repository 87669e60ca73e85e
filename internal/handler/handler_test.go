package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"recipeshare/backend/internal/auth"
	"recipeshare/backend/internal/config"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/models"
	"recipeshare/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points database.DB at a fresh sqlite database for one test.
// A file in t.TempDir() is used instead of :memory: because gorm's pool can
// open extra connections, and each :memory: connection is its own empty DB.
func setupTestDB(t *testing.T) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
}

// newTestRouter mirrors the route layout of the server's main.
func newTestRouter() *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)

	browse := api.Group("")
	browse.Use(auth.OptionalAuthMiddleware())
	{
		browse.GET("/users/:id", GetUserByID)
		browse.GET("/recipes", GetRecipes)
		browse.GET("/recipes/:id", GetRecipeByID)
		browse.GET("/recipes/:id/comments", GetComments)
		browse.GET("/notifications", GetNotifications)
	}

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/users/me", GetMe)
		protected.PATCH("/users/me", UpdateProfile)
		protected.POST("/users/:id/follow", ToggleFollow)

		protected.POST("/recipes", CreateRecipe)
		protected.PUT("/recipes/:id", UpdateRecipe)
		protected.POST("/recipes/:id/rating", SubmitRating)
		protected.POST("/recipes/:id/favorite", ToggleFavorite)
		protected.POST("/recipes/:id/comments", AddComment)

		protected.POST("/notifications/:id/read", MarkNotificationRead)

		admin := protected.Group("/admin")
		admin.Use(auth.AdminMiddleware())
		admin.POST("/recipes/:id/approve", ApproveRecipe)
	}

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// createTestUser inserts a user with a profile and returns it with a valid token.
func createTestUser(t *testing.T, email, displayName string) (models.User, string) {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		DisplayName:  displayName,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	_, err := ensureProfile(user.ID)
	require.NoError(t, err)

	token, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

// createTestRecipe inserts an approved recipe owned by the given author.
func createTestRecipe(t *testing.T, authorID uint, title string) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		Title:       title,
		Ingredients: []string{"flour", "eggs"},
		Steps:       []string{"mix", "bake"},
		Cuisine:     "french",
		PrepTime:    30,
		Servings:    4,
		AuthorID:    authorID,
		IsApproved:  true,
		Version:     1,
	}
	require.NoError(t, database.DB.Create(&recipe).Error)
	return recipe
}

func notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()

	var notifications []models.Notification
	require.NoError(t, database.DB.
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&notifications).Error)
	return notifications
}
