package main

import (
	"context"
	"log"
	"net/http"

	"recipeshare/backend/internal/ai"
	"recipeshare/backend/internal/auth"
	"recipeshare/backend/internal/config"
	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/handler"
	"recipeshare/backend/internal/observ"
	"recipeshare/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	// Swagger imports
	_ "recipeshare/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Recipeshare API
// @version         1.0
// @description     This is the API for the recipeshare service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := observ.NewLogger(config.AppConfig.AppEnv, config.AppConfig.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Optional collaborators: the core works without them.
	if config.AppConfig.GeminiAPIKey != "" {
		handler.AI = ai.NewClient(config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set, recipe suggestions disabled")
	}

	if config.AppConfig.AWSS3Bucket != "" {
		store, err := storage.NewAwsS3(
			context.Background(),
			config.AppConfig.AWSS3Region,
			config.AppConfig.AWSS3Bucket,
			config.AppConfig.AWSAccessKey,
			config.AppConfig.AWSSecretKey,
		)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
		handler.Store = store
	} else {
		logger.Warn("AWS_S3_BUCKET not set, image uploads disabled")
	}

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// Public browsing: a token is optional and only personalizes the
		// response (is_favorite, my_rating, is_followed_by_me).
		browseRoutes := apiV1.Group("")
		browseRoutes.Use(auth.OptionalAuthMiddleware())
		{
			browseRoutes.GET("/users/:id", handler.GetUserByID)
			browseRoutes.GET("/recipes", handler.GetRecipes)
			browseRoutes.GET("/recipes/:id", handler.GetRecipeByID)
			browseRoutes.GET("/recipes/:id/comments", handler.GetComments)
			browseRoutes.GET("/notifications", handler.GetNotifications)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PATCH("/me", handler.UpdateProfile)
			userRoutes.POST("/:id/follow", handler.ToggleFollow)
		}

		// Recipe routes (protected)
		recipeRoutes := apiV1.Group("/recipes")
		recipeRoutes.Use(auth.AuthMiddleware())
		{
			recipeRoutes.POST("", handler.CreateRecipe)
			recipeRoutes.PUT("/:id", handler.UpdateRecipe)
			recipeRoutes.POST("/:id/rating", handler.SubmitRating)
			recipeRoutes.POST("/:id/favorite", handler.ToggleFavorite)
			recipeRoutes.POST("/:id/comments", handler.AddComment)
		}

		// Notification routes (protected)
		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(auth.AuthMiddleware())
		{
			notificationRoutes.GET("/stream", handler.StreamNotifications)
			notificationRoutes.POST("/:id/read", handler.MarkNotificationRead)
		}

		// Upload and AI routes (protected)
		apiV1.POST("/uploads", auth.AuthMiddleware(), handler.UploadImage)
		apiV1.POST("/ai/suggestions", auth.AuthMiddleware(), handler.GenerateSuggestions)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.POST("/recipes/:id/approve", handler.ApproveRecipe)
		}
	}

	logger.Info("server listening", zap.String("addr", ":8080"))
	if err := router.Run(":8080"); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
