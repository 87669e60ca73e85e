package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Gemini recipe suggestion API
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// S3 image storage
	AWSS3Bucket  string `mapstructure:"AWS_S3_BUCKET"`
	AWSS3Region  string `mapstructure:"AWS_S3_REGION"`
	AWSAccessKey string `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey string `mapstructure:"AWS_SECRET_KEY"`

	AppEnv   string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if AppConfig.GeminiModel == "" {
		AppConfig.GeminiModel = "gemini-pro"
	}
}
