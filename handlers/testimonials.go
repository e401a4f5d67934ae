package handlers

import (
	"log"
	"net/http"

	"github.com/anggr/haev-revalidate/models"
	"github.com/anggr/haev-revalidate/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTestimonials lists customer testimonials. Without a product_id filter it
// returns the standalone ones shown on the storefront homepage.
func GetTestimonials(c *gin.Context) {
	query := `SELECT id, product_id, customer_name, text, rating, image_url, created_at
	          FROM customer_testimonials`
	args := []interface{}{}

	if productID := c.Query("product_id"); productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	} else {
		query += ` WHERE product_id IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("Failed to query testimonials: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch testimonials"})
		return
	}
	defer rows.Close()

	testimonials := []models.CustomerTestimonial{}
	for rows.Next() {
		var t models.CustomerTestimonial
		if err := rows.Scan(&t.ID, &t.ProductID, &t.CustomerName, &t.Text, &t.Rating, &t.ImageURL, &t.CreatedAt); err != nil {
			log.Printf("Failed to scan testimonial row: %v", err)
			continue
		}
		testimonials = append(testimonials, t)
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": testimonials})
}

// CreateTestimonial persists a standalone or product-scoped testimonial.
func CreateTestimonial(c *gin.Context) {
	var payload struct {
		TestimonialPayload
		ProductID string `json:"product_id" validate:"omitempty,uuid"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if violations := structViolations(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	testimonialID := uuid.New()
	_, err := DB.Exec(`
		INSERT INTO customer_testimonials (id, product_id, customer_name, text, rating, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		testimonialID, nullable(payload.ProductID), payload.CustomerName, payload.Text,
		payload.Rating, nullable(payload.ImageURL))
	if err != nil {
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Referenced product does not exist"})
			return
		}
		log.Printf("Failed to insert testimonial: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create testimonial"})
		return
	}

	services.Revalidator.RevalidatePath("/")

	c.JSON(http.StatusCreated, gin.H{"message": "Testimonial created successfully", "id": testimonialID})
}

// DeleteTestimonial removes a testimonial by id.
func DeleteTestimonial(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid testimonial ID"})
		return
	}

	result, err := DB.Exec(`DELETE FROM customer_testimonials WHERE id = $1`, id)
	if err != nil {
		log.Printf("Failed to delete testimonial %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete testimonial"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
		return
	}

	services.Revalidator.RevalidatePath("/")

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted successfully"})
}
