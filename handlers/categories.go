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

// CategoryPayload is the accepted shape of category create/update requests.
type CategoryPayload struct {
	Name      string `json:"name" validate:"required,min=2"`
	Slug      string `json:"slug" validate:"omitempty,min=2"`
	Banner    string `json:"banner" validate:"omitempty,url"`
	BannerSm  string `json:"banner_sm" validate:"omitempty,url"`
	ParentID  string `json:"parent_id" validate:"omitempty,uuid"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// GetCategories lists every category with its subcategories, ordered for
// display.
func GetCategories(c *gin.Context) {
	rows, err := DB.Query(`
		SELECT id, name, slug, banner, banner_sm, parent_id, is_active, sort_order, created_at, updated_at
		FROM categories ORDER BY sort_order, name`)
	if err != nil {
		log.Printf("Failed to query categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []gin.H{}
	index := map[string]gin.H{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Banner, &category.BannerSm,
			&category.ParentID, &category.IsActive, &category.SortOrder, &category.CreatedAt, &category.UpdatedAt); err != nil {
			log.Printf("Failed to scan category row: %v", err)
			continue
		}
		entry := gin.H{
			"id":            category.ID,
			"name":          category.Name,
			"slug":          category.Slug,
			"banner":        category.Banner,
			"banner_sm":     category.BannerSm,
			"parent_id":     category.ParentID,
			"is_active":     category.IsActive,
			"sort_order":    category.SortOrder,
			"created_at":    category.CreatedAt,
			"updated_at":    category.UpdatedAt,
			"subcategories": []gin.H{},
		}
		categories = append(categories, entry)
		index[category.ID.String()] = entry
	}

	subRows, err := DB.Query(`
		SELECT id, category_id, name, slug, is_active, sort_order
		FROM subcategories ORDER BY sort_order, name`)
	if err == nil {
		for subRows.Next() {
			var sub models.Subcategory
			if err := subRows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug, &sub.IsActive, &sub.SortOrder); err != nil {
				continue
			}
			if parent, ok := index[sub.CategoryID.String()]; ok {
				parent["subcategories"] = append(parent["subcategories"].([]gin.H), gin.H{
					"id": sub.ID, "name": sub.Name, "slug": sub.Slug,
					"is_active": sub.IsActive, "sort_order": sub.SortOrder,
				})
			}
		}
		subRows.Close()
	} else {
		log.Printf("Failed to query subcategories: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns a single category by id.
func GetCategory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var category models.Category
	err := DB.QueryRow(`
		SELECT id, name, slug, banner, banner_sm, parent_id, is_active, sort_order, created_at, updated_at
		FROM categories WHERE id = $1`, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Banner, &category.BannerSm,
		&category.ParentID, &category.IsActive, &category.SortOrder, &category.CreatedAt, &category.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to fetch category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory validates and persists a category.
func CreateCategory(c *gin.Context) {
	var payload CategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if violations := structViolations(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	candidate := payload.Slug
	if candidate == "" {
		candidate = payload.Name
	}
	slug, err := ensureUniqueSlug("categories", generateSlug(candidate), "")
	if err != nil {
		log.Printf("Failed to resolve category slug: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	categoryID := uuid.New()
	_, err = DB.Exec(`
		INSERT INTO categories (id, name, slug, banner, banner_sm, parent_id, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		categoryID, payload.Name, slug, nullable(payload.Banner), nullable(payload.BannerSm),
		nullable(payload.ParentID), isActive, payload.SortOrder)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this slug already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Parent category does not exist"})
			return
		}
		log.Printf("Failed to insert category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	paths := []string{"/", "/category/" + slug}
	if s := referencedSlug("categories", payload.ParentID); s != "" {
		paths = append(paths, "/category/"+s)
	}
	services.Revalidator.RevalidatePaths(paths)

	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "id": categoryID, "slug": slug})
}

// UpdateCategory rewrites a category row. The slug only moves when the caller
// sends one or renames the category.
func UpdateCategory(c *gin.Context) {
	var payload CategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateCategory(c, c.Param("id"), &payload)
}

// UpdateCategoryByPayload is the command-style variant of UpdateCategory.
func UpdateCategoryByPayload(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
		CategoryPayload
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateCategory(c, payload.ID, &payload.CategoryPayload)
}

func updateCategory(c *gin.Context, id string, payload *CategoryPayload) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}
	if violations := structViolations(payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	var currentName, currentSlug string
	var currentParentID sql.NullString
	var currentIsActive bool
	err := DB.QueryRow(
		`SELECT name, slug, parent_id, is_active FROM categories WHERE id = $1`, id,
	).Scan(&currentName, &currentSlug, &currentParentID, &currentIsActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	slug := currentSlug
	if payload.Slug != "" {
		slug = generateSlug(payload.Slug)
	} else if payload.Name != currentName {
		slug = generateSlug(payload.Name)
	}
	if slug != currentSlug {
		slug, err = ensureUniqueSlug("categories", slug, id)
		if err != nil {
			log.Printf("Failed to resolve category slug: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
	}

	isActive := currentIsActive
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	_, err = DB.Exec(`
		UPDATE categories SET name = $1, slug = $2, banner = $3, banner_sm = $4,
			parent_id = $5, is_active = $6, sort_order = $7, updated_at = now()
		WHERE id = $8`,
		payload.Name, slug, nullable(payload.Banner), nullable(payload.BannerSm),
		nullable(payload.ParentID), isActive, payload.SortOrder, id)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this slug already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Parent category does not exist"})
			return
		}
		log.Printf("Failed to update category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	paths := []string{"/", "/category/" + currentSlug}
	if slug != currentSlug {
		paths = append(paths, "/category/"+slug)
	}
	// The parent's listing changes when the category moves under a new parent.
	oldParent := ""
	if currentParentID.Valid {
		oldParent = currentParentID.String
	}
	if payload.ParentID != oldParent {
		if s := referencedSlug("categories", oldParent); s != "" {
			paths = append(paths, "/category/"+s)
		}
		if s := referencedSlug("categories", payload.ParentID); s != "" {
			paths = append(paths, "/category/"+s)
		}
	}
	services.Revalidator.RevalidatePaths(mergePaths(paths, nil))

	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "id": id, "slug": slug})
}

// DeleteCategory removes a category unless products or subcategories still
// reference it.
func DeleteCategory(c *gin.Context) {
	deleteCategory(c, c.Param("id"))
}

// DeleteCategoryByPayload is the command-style variant of DeleteCategory.
func DeleteCategoryByPayload(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	deleteCategory(c, payload.ID)
}

func deleteCategory(c *gin.Context, id string) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var slug string
	err := DB.QueryRow(`SELECT slug FROM categories WHERE id = $1`, id).Scan(&slug)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	var productCount, subcategoryCount int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&productCount); err != nil {
		log.Printf("Failed to count products for category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if err := DB.QueryRow(`SELECT COUNT(*) FROM subcategories WHERE category_id = $1`, id).Scan(&subcategoryCount); err != nil {
		log.Printf("Failed to count subcategories for category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if productCount > 0 || subcategoryCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Category is still referenced by products or subcategories and cannot be deleted",
		})
		return
	}

	result, err := DB.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category is still referenced and cannot be deleted"})
			return
		}
		log.Printf("Failed to delete category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	services.Revalidator.RevalidatePaths([]string{"/", "/category/" + slug})

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
