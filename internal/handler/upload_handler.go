package handler

import (
	"net/http"
	"path/filepath"
	"recipeshare/backend/internal/storage"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store is the image storage backend, wired in from main. When nil (e.g. in
// development without S3 credentials), uploads are rejected and stored image
// keys are returned without resolved URLs.
var Store *storage.AwsS3

// ImageURL pairs a stored image key with a resolved, time-limited URL.
type ImageURL struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

// UploadImage godoc
// @Summary      Upload an image
// @Description  Uploads a recipe or avatar image and returns its storage key and a resolved URL.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "Image file"
// @Success      201 {object} ImageURL
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "Storage not configured"
// @Router       /uploads [post]
func UploadImage(c *gin.Context) {
	if Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image uploads are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	key := "uploads/" + uuid.New().String() + filepath.Ext(fileHeader.Filename)
	if err := Store.Upload(c.Request.Context(), key, contentType, file); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store image"})
		return
	}

	url, err := Store.ResolveURL(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve image URL"})
		return
	}

	c.JSON(http.StatusCreated, ImageURL{Key: key, URL: url})
}

// resolveImageURL resolves a single stored key to a URL. Empty keys and an
// unconfigured store yield an empty URL.
func resolveImageURL(c *gin.Context, key string) string {
	if key == "" || Store == nil {
		return ""
	}
	url, err := Store.ResolveURL(c.Request.Context(), key)
	if err != nil {
		return ""
	}
	return url
}

// resolveImageURLs resolves each stored key, preserving order.
func resolveImageURLs(c *gin.Context, keys []string) []ImageURL {
	urls := make([]ImageURL, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, ImageURL{Key: key, URL: resolveImageURL(c, key)})
	}
	return urls
}
