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

// BrandPayload is the accepted shape of brand create/update requests.
type BrandPayload struct {
	Name     string `json:"name" validate:"required,min=2"`
	Slug     string `json:"slug" validate:"omitempty,min=2"`
	Logo     string `json:"logo" validate:"omitempty,url"`
	Banner   string `json:"banner" validate:"omitempty,url"`
	IsActive *bool  `json:"is_active"`
}

// GetBrands lists every brand.
func GetBrands(c *gin.Context) {
	rows, err := DB.Query(`
		SELECT id, name, slug, logo, banner, is_active, created_at, updated_at
		FROM brands ORDER BY name`)
	if err != nil {
		log.Printf("Failed to query brands: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brands"})
		return
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var brand models.Brand
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.Logo, &brand.Banner,
			&brand.IsActive, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			log.Printf("Failed to scan brand row: %v", err)
			continue
		}
		brands = append(brands, brand)
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetBrand returns a single brand by id.
func GetBrand(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid brand ID"})
		return
	}

	var brand models.Brand
	err := DB.QueryRow(`
		SELECT id, name, slug, logo, banner, is_active, created_at, updated_at
		FROM brands WHERE id = $1`, id).Scan(
		&brand.ID, &brand.Name, &brand.Slug, &brand.Logo, &brand.Banner,
		&brand.IsActive, &brand.CreatedAt, &brand.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to fetch brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brand"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brand": brand})
}

// CreateBrand validates and persists a brand.
func CreateBrand(c *gin.Context) {
	var payload BrandPayload
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
	slug, err := ensureUniqueSlug("brands", generateSlug(candidate), "")
	if err != nil {
		log.Printf("Failed to resolve brand slug: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create brand"})
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	brandID := uuid.New()
	_, err = DB.Exec(`
		INSERT INTO brands (id, name, slug, logo, banner, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		brandID, payload.Name, slug, nullable(payload.Logo), nullable(payload.Banner), isActive)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A brand with this slug already exists"})
			return
		}
		log.Printf("Failed to insert brand: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create brand"})
		return
	}

	services.Revalidator.RevalidatePaths([]string{"/", "/brand/" + slug})

	c.JSON(http.StatusCreated, gin.H{"message": "Brand created successfully", "id": brandID, "slug": slug})
}

// UpdateBrand rewrites a brand row. The slug only moves when the caller sends
// one or renames the brand.
func UpdateBrand(c *gin.Context) {
	var payload BrandPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateBrand(c, c.Param("id"), &payload)
}

// UpdateBrandByPayload is the command-style variant of UpdateBrand.
func UpdateBrandByPayload(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
		BrandPayload
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateBrand(c, payload.ID, &payload.BrandPayload)
}

func updateBrand(c *gin.Context, id string, payload *BrandPayload) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid brand ID"})
		return
	}
	if violations := structViolations(payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}

	var currentName, currentSlug string
	var currentIsActive bool
	err := DB.QueryRow(
		`SELECT name, slug, is_active FROM brands WHERE id = $1`, id,
	).Scan(&currentName, &currentSlug, &currentIsActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update brand"})
		return
	}

	slug := currentSlug
	if payload.Slug != "" {
		slug = generateSlug(payload.Slug)
	} else if payload.Name != currentName {
		slug = generateSlug(payload.Name)
	}
	if slug != currentSlug {
		slug, err = ensureUniqueSlug("brands", slug, id)
		if err != nil {
			log.Printf("Failed to resolve brand slug: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update brand"})
			return
		}
	}

	isActive := currentIsActive
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	_, err = DB.Exec(`
		UPDATE brands SET name = $1, slug = $2, logo = $3, banner = $4, is_active = $5, updated_at = now()
		WHERE id = $6`,
		payload.Name, slug, nullable(payload.Logo), nullable(payload.Banner), isActive, id)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A brand with this slug already exists"})
			return
		}
		log.Printf("Failed to update brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update brand"})
		return
	}

	paths := []string{"/", "/brand/" + currentSlug}
	if slug != currentSlug {
		paths = append(paths, "/brand/"+slug)
	}
	services.Revalidator.RevalidatePaths(paths)

	c.JSON(http.StatusOK, gin.H{"message": "Brand updated successfully", "id": id, "slug": slug})
}

// DeleteBrand removes a brand unless products still reference it.
func DeleteBrand(c *gin.Context) {
	deleteBrand(c, c.Param("id"))
}

// DeleteBrandByPayload is the command-style variant of DeleteBrand.
func DeleteBrandByPayload(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	deleteBrand(c, payload.ID)
}

func deleteBrand(c *gin.Context, id string) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid brand ID"})
		return
	}

	var slug string
	err := DB.QueryRow(`SELECT slug FROM brands WHERE id = $1`, id).Scan(&slug)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete brand"})
		return
	}

	var productCount int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM products WHERE brand_id = $1`, id).Scan(&productCount); err != nil {
		log.Printf("Failed to count products for brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete brand"})
		return
	}
	if productCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Brand is still referenced by products and cannot be deleted"})
		return
	}

	result, err := DB.Exec(`DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Brand is still referenced and cannot be deleted"})
			return
		}
		log.Printf("Failed to delete brand %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete brand"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	services.Revalidator.RevalidatePaths([]string{"/", "/brand/" + slug})

	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted successfully"})
}
