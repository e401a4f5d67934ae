package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/anggr/haev-revalidate/models"
	"github.com/anggr/haev-revalidate/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubcategoryPayload is the accepted shape of subcategory create/update
// requests. The parent category id comes from the URL.
type SubcategoryPayload struct {
	Name      string `json:"name" validate:"required,min=2"`
	Slug      string `json:"slug" validate:"omitempty,min=2"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// GetSubcategories lists a category's subcategories.
func GetSubcategories(c *gin.Context) {
	categoryID := c.Param("id")
	if _, err := uuid.Parse(categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	rows, err := DB.Query(`
		SELECT id, category_id, name, slug, is_active, sort_order, created_at, updated_at
		FROM subcategories WHERE category_id = $1 ORDER BY sort_order, name`, categoryID)
	if err != nil {
		log.Printf("Failed to query subcategories for category %s: %v", categoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories"})
		return
	}
	defer rows.Close()

	subcategories := []models.Subcategory{}
	for rows.Next() {
		var sub models.Subcategory
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug,
			&sub.IsActive, &sub.SortOrder, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			log.Printf("Failed to scan subcategory row: %v", err)
			continue
		}
		subcategories = append(subcategories, sub)
	}

	c.JSON(http.StatusOK, gin.H{"subcategories": subcategories})
}

// CreateSubcategory adds a subcategory under the category in the URL. Slugs
// are unique per parent category, not globally.
func CreateSubcategory(c *gin.Context) {
	categoryID := c.Param("id")
	if _, err := uuid.Parse(categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var payload SubcategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if violations := structViolations(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	var categorySlug string
	err := DB.QueryRow(`SELECT slug FROM categories WHERE id = $1`, categoryID).Scan(&categorySlug)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load category %s: %v", categoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	candidate := payload.Slug
	if candidate == "" {
		candidate = payload.Name
	}
	slug, err := ensureUniqueSubcategorySlug(categoryID, generateSlug(candidate), "")
	if err != nil {
		log.Printf("Failed to resolve subcategory slug: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	subcategoryID := uuid.New()
	_, err = DB.Exec(`
		INSERT INTO subcategories (id, category_id, name, slug, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		subcategoryID, categoryID, payload.Name, slug, isActive, payload.SortOrder)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A subcategory with this slug already exists in this category"})
			return
		}
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category does not exist"})
			return
		}
		log.Printf("Failed to insert subcategory: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	services.Revalidator.RevalidatePaths([]string{"/", "/category/" + categorySlug})

	c.JSON(http.StatusCreated, gin.H{"message": "Subcategory created successfully", "id": subcategoryID, "slug": slug})
}

// UpdateSubcategory rewrites a subcategory row.
func UpdateSubcategory(c *gin.Context) {
	categoryID := c.Param("id")
	subcategoryID := c.Param("subId")
	if _, err := uuid.Parse(categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}
	if _, err := uuid.Parse(subcategoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	var payload SubcategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if violations := structViolations(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	var currentName, currentSlug string
	var currentIsActive bool
	err := DB.QueryRow(
		`SELECT name, slug, is_active FROM subcategories WHERE id = $1 AND category_id = $2`,
		subcategoryID, categoryID,
	).Scan(&currentName, &currentSlug, &currentIsActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load subcategory %s: %v", subcategoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
		return
	}

	slug := currentSlug
	if payload.Slug != "" {
		slug = generateSlug(payload.Slug)
	} else if payload.Name != currentName {
		slug = generateSlug(payload.Name)
	}
	if slug != currentSlug {
		slug, err = ensureUniqueSubcategorySlug(categoryID, slug, subcategoryID)
		if err != nil {
			log.Printf("Failed to resolve subcategory slug: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
			return
		}
	}

	isActive := currentIsActive
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	_, err = DB.Exec(`
		UPDATE subcategories SET name = $1, slug = $2, is_active = $3, sort_order = $4, updated_at = now()
		WHERE id = $5 AND category_id = $6`,
		payload.Name, slug, isActive, payload.SortOrder, subcategoryID, categoryID)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A subcategory with this slug already exists in this category"})
			return
		}
		log.Printf("Failed to update subcategory %s: %v", subcategoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
		return
	}

	if categorySlug := referencedSlug("categories", categoryID); categorySlug != "" {
		services.Revalidator.RevalidatePaths([]string{"/", "/category/" + categorySlug})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory updated successfully", "id": subcategoryID, "slug": slug})
}

// DeleteSubcategory removes a subcategory unless products still reference it.
func DeleteSubcategory(c *gin.Context) {
	categoryID := c.Param("id")
	subcategoryID := c.Param("subId")
	if _, err := uuid.Parse(categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}
	if _, err := uuid.Parse(subcategoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	var productCount int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM products WHERE subcategory_id = $1`, subcategoryID).Scan(&productCount); err != nil {
		log.Printf("Failed to count products for subcategory %s: %v", subcategoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcategory"})
		return
	}
	if productCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Subcategory is still referenced by products and cannot be deleted"})
		return
	}

	result, err := DB.Exec(
		`DELETE FROM subcategories WHERE id = $1 AND category_id = $2`, subcategoryID, categoryID)
	if err != nil {
		log.Printf("Failed to delete subcategory %s: %v", subcategoryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcategory"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	if categorySlug := referencedSlug("categories", categoryID); categorySlug != "" {
		services.Revalidator.RevalidatePaths([]string{"/", "/category/" + categorySlug})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully"})
}
