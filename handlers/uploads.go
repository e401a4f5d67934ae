package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/anggr/haev-revalidate/services"

	"github.com/gin-gonic/gin"
)

// UploadImage receives a multipart file and stores it in the configured
// object storage, returning the public URL.
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	folder := c.DefaultPostForm("folder", "uploads")

	if services.Cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file %s: %v", file.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	fileData, err := io.ReadAll(src)
	if err != nil {
		log.Printf("Failed to read uploaded file %s: %v", file.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	uploadResult, err := services.Cloudinary.UploadImageFromBytes(fileData, file.Filename, folder)
	if err != nil {
		log.Printf("Image upload failed for %s: %v", file.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       uploadResult.SecureURL,
		"public_id": uploadResult.PublicID,
		"width":     uploadResult.Width,
		"height":    uploadResult.Height,
	})
}

// DeleteImage removes a stored asset identified by its public URL. The
// storage-relative path is derived by stripping the host and version prefix.
func DeleteImage(c *gin.Context) {
	var payload struct {
		URL string `json:"url" validate:"required,url"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if violations := structViolations(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	if services.Cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	publicID := services.ExtractPublicID(payload.URL)
	if publicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL does not reference a stored image"})
		return
	}

	if err := services.Cloudinary.DeleteImage(publicID); err != nil {
		log.Printf("Failed to delete image %s: %v", publicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
