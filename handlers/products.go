package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anggr/haev-revalidate/models"
	"github.com/anggr/haev-revalidate/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetProducts returns a paginated product listing with optional search and
// category/brand/status filters.
func GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	conditions := []string{}
	args := []interface{}{}
	argIdx := 1

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.sku ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIdx))
		args = append(args, categoryID)
		argIdx++
	}
	if brandID := c.Query("brand_id"); brandID != "" {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", argIdx))
		args = append(args, brandID)
		argIdx++
	}
	if status := c.Query("status"); status == "active" || status == "draft" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, status)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products p" + whereClause
	if err := DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
		log.Printf("Failed to count products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	query := `
		SELECT p.id, p.name, p.slug, p.description, p.sku, p.price, p.compare_at_price,
		       p.currency, p.quantity, p.status, p.mark, p.rating, p.rating_count,
		       p.category_id, p.subcategory_id, p.brand_id, p.created_at, p.updated_at,
		       c.name, c.slug, b.name, b.slug,
		       (SELECT url FROM product_images pi WHERE pi.product_id = p.id AND pi.is_primary = TRUE LIMIT 1)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN brands b ON b.id = p.brand_id` + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("Failed to query products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []gin.H{}
	for rows.Next() {
		var (
			id, name, slug, currency, status          string
			description, mark, skuCode                sql.NullString
			price                                     float64
			compareAtPrice                            sql.NullFloat64
			quantity, ratingCount                     int
			rating                                    float64
			categoryID, subcategoryID, brandID        sql.NullString
			categoryName, categorySlug                sql.NullString
			brandName, brandSlug, primaryImage        sql.NullString
			createdAt, updatedAt                      time.Time
		)
		err := rows.Scan(&id, &name, &slug, &description, &skuCode, &price, &compareAtPrice,
			&currency, &quantity, &status, &mark, &rating, &ratingCount,
			&categoryID, &subcategoryID, &brandID, &createdAt, &updatedAt,
			&categoryName, &categorySlug, &brandName, &brandSlug, &primaryImage)
		if err != nil {
			log.Printf("Failed to scan product row: %v", err)
			continue
		}

		products = append(products, gin.H{
			"id":               id,
			"name":             name,
			"slug":             slug,
			"description":      description.String,
			"sku":              skuCode.String,
			"price":            price,
			"compare_at_price": nullFloat(compareAtPrice),
			"currency":         currency,
			"quantity":         quantity,
			"status":           status,
			"mark":             mark.String,
			"rating":           rating,
			"rating_count":     ratingCount,
			"category_id":      nullString(categoryID),
			"subcategory_id":   nullString(subcategoryID),
			"brand_id":         nullString(brandID),
			"category_name":    categoryName.String,
			"category_slug":    categorySlug.String,
			"brand_name":       brandName.String,
			"brand_slug":       brandSlug.String,
			"primary_image":    primaryImage.String,
			"created_at":       createdAt,
			"updated_at":       updatedAt,
		})
	}

	totalPages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetProduct returns a single product by id with all child collections.
func GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	respondProductDetail(c, "p.id = $1", id)
}

// GetProductBySlug returns a single product by slug with all child collections.
func GetProductBySlug(c *gin.Context) {
	respondProductDetail(c, "p.slug = $1", c.Param("slug"))
}

func respondProductDetail(c *gin.Context, whereClause, arg string) {
	var product models.Product
	var categoryName, categorySlug, subcategoryName, subcategorySlug, brandName, brandSlug sql.NullString

	err := DB.QueryRow(`
		SELECT p.id, p.name, p.slug, p.description, p.long_description, p.sku,
		       p.price, p.compare_at_price, p.cost_price, p.currency,
		       p.quantity, p.track_quantity, p.allow_backorder, p.low_stock_alert, p.reserved_stock, p.max_stock,
		       p.weight, p.weight_unit, p.length, p.width, p.height, p.dimension_unit,
		       p.requires_shipping, p.shipping_class, p.status, p.mark,
		       p.seo_title, p.seo_description, p.rating, p.rating_count,
		       p.category_id, p.subcategory_id, p.brand_id, p.created_at, p.updated_at,
		       c.name, c.slug, s.name, s.slug, b.name, b.slug
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN subcategories s ON s.id = p.subcategory_id
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE `+whereClause, arg).Scan(
		&product.ID, &product.Name, &product.Slug, &product.Description, &product.LongDescription, &product.SKU,
		&product.Price, &product.CompareAtPrice, &product.CostPrice, &product.Currency,
		&product.Quantity, &product.TrackQuantity, &product.AllowBackorder, &product.LowStockAlert, &product.ReservedStock, &product.MaxStock,
		&product.Weight, &product.WeightUnit, &product.Length, &product.Width, &product.Height, &product.DimensionUnit,
		&product.RequiresShipping, &product.ShippingClass, &product.Status, &product.Mark,
		&product.SEOTitle, &product.SEODescription, &product.Rating, &product.RatingCount,
		&product.CategoryID, &product.SubcategoryID, &product.BrandID, &product.CreatedAt, &product.UpdatedAt,
		&categoryName, &categorySlug, &subcategoryName, &subcategorySlug, &brandName, &brandSlug,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to fetch product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	resp := gin.H{
		"product":          product,
		"category_name":    categoryName.String,
		"category_slug":    categorySlug.String,
		"subcategory_name": subcategoryName.String,
		"subcategory_slug": subcategorySlug.String,
		"brand_name":       brandName.String,
		"brand_slug":       brandSlug.String,
	}
	for key, value := range fetchProductChildren(product.ID.String()) {
		resp[key] = value
	}

	c.JSON(http.StatusOK, resp)
}

// CreateProduct validates and persists a product with all child collections.
// The core row is authoritative: once it is written the request succeeds, and
// child-collection failures are reported in the response without rolling back.
func CreateProduct(c *gin.Context) {
	var payload ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if violations := ValidateProduct(&payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}
	NormalizeProduct(&payload)

	candidate := payload.Slug
	if candidate == "" {
		candidate = generateSlug(payload.Name)
	} else {
		candidate = generateSlug(candidate)
	}
	slug, err := ensureUniqueSlug("products", candidate, "")
	if err != nil {
		log.Printf("Failed to resolve product slug: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	productID := uuid.New()
	_, err = DB.Exec(`
		INSERT INTO products (
			id, name, slug, description, long_description, sku,
			price, compare_at_price, cost_price, currency,
			quantity, track_quantity, allow_backorder, low_stock_alert, reserved_stock, max_stock,
			weight, weight_unit, length, width, height, dimension_unit,
			requires_shipping, shipping_class, status, mark,
			seo_title, seo_description, category_id, subcategory_id, brand_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31
		)`,
		productID, payload.Name, slug,
		nullable(payload.Description), nullable(payload.LongDescription), nullable(payload.SKU),
		payload.Price, payload.CompareAtPrice, payload.CostPrice, payload.Currency,
		payload.Quantity, *payload.TrackQuantity, payload.AllowBackorder,
		payload.LowStockAlert, payload.ReservedStock, payload.MaxStock,
		payload.Weight, nullable(payload.WeightUnit),
		payload.Length, payload.Width, payload.Height, nullable(payload.DimensionUnit),
		*payload.RequiresShipping, nullable(payload.ShippingClass), payload.Status, nullable(payload.Mark),
		nullable(payload.SEOTitle), nullable(payload.SEODescription),
		nullable(payload.CategoryID), nullable(payload.SubcategoryID), nullable(payload.BrandID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Referenced category, subcategory or brand does not exist"})
			return
		}
		log.Printf("Failed to insert product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	childErrors := insertProductChildren(productID, &payload)

	services.Revalidator.RevalidatePaths(productPaths(slug, payload.CategoryID, payload.BrandID))

	resp := gin.H{"message": "Product created successfully", "id": productID, "slug": slug}
	if len(childErrors) > 0 {
		resp["errors"] = childErrors
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateProduct rewrites the supplied columns of a product's core row and
// fully replaces every child collection with the payload's contents. Child
// tables are purged first as a concurrent batch, then reinserted. The product
// id comes from the URL.
func UpdateProduct(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	var payload ProductPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateProduct(c, c.Param("id"), &payload, suppliedFields(body))
}

// UpdateProductByPayload is the command-style variant of UpdateProduct: the
// product id travels in the JSON body instead of the URL.
func UpdateProductByPayload(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	var payload struct {
		ID string `json:"id"`
		ProductPayload
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updateProduct(c, payload.ID, &payload.ProductPayload, suppliedFields(body))
}

// suppliedFields reports which top-level keys the caller actually sent, so
// the core-row update leaves omitted columns untouched.
func suppliedFields(body []byte) map[string]bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return map[string]bool{}
	}
	fields := make(map[string]bool, len(raw))
	for key := range raw {
		fields[key] = true
	}
	return fields
}

func updateProduct(c *gin.Context, id string, payload *ProductPayload, supplied map[string]bool) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if violations := ValidateProduct(payload); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": violations})
		return
	}
	NormalizeProduct(payload)

	var currentName, currentSlug string
	var currentCategoryID, currentBrandID sql.NullString
	err := DB.QueryRow(
		`SELECT name, slug, category_id, brand_id FROM products WHERE id = $1`, id,
	).Scan(&currentName, &currentSlug, &currentCategoryID, &currentBrandID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	// Slug only moves when the caller sends one or renames the product.
	slug := currentSlug
	if payload.Slug != "" {
		slug = generateSlug(payload.Slug)
	} else if payload.Name != currentName {
		slug = generateSlug(payload.Name)
	}
	if slug != currentSlug {
		slug, err = ensureUniqueSlug("products", slug, id)
		if err != nil {
			log.Printf("Failed to resolve product slug: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
	}

	var childErrors []string

	// Variant attribute/feature rows hang off variant ids, so those ids must
	// be known before the purge. When the prefetch fails the variant tables
	// are skipped entirely and the remaining child tables are still purged.
	variantIDs, err := fetchVariantIDs(id)
	includeVariants := err == nil
	if err != nil {
		log.Printf("Failed to fetch variant ids for product %s: %v", id, err)
		childErrors = append(childErrors, fmt.Sprintf("fetch variant ids: %v", err))
	}
	childErrors = append(childErrors, deleteProductChildren(id, variantIDs, includeVariants)...)

	// Only columns the caller actually sent are written, so a partial
	// payload cannot null out stored values.
	if supplied["requires_shipping"] && !*payload.RequiresShipping {
		// NormalizeProduct cleared the physical fields; persist the clearing.
		for _, field := range []string{"weight", "weight_unit", "length", "width", "height", "dimension_unit", "shipping_class"} {
			supplied[field] = true
		}
	}

	setClauses := []string{}
	updateArgs := []interface{}{}
	argIdx := 1
	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		updateArgs = append(updateArgs, value)
		argIdx++
	}

	set("name", payload.Name)
	set("slug", slug)
	if supplied["description"] {
		set("description", nullable(payload.Description))
	}
	if supplied["long_description"] {
		set("long_description", nullable(payload.LongDescription))
	}
	if supplied["sku"] {
		set("sku", nullable(payload.SKU))
	}
	if supplied["price"] {
		set("price", payload.Price)
	}
	if supplied["compare_at_price"] {
		set("compare_at_price", payload.CompareAtPrice)
	}
	if supplied["cost_price"] {
		set("cost_price", payload.CostPrice)
	}
	if supplied["currency"] {
		set("currency", payload.Currency)
	}
	if supplied["quantity"] {
		set("quantity", payload.Quantity)
	}
	if supplied["track_quantity"] {
		set("track_quantity", *payload.TrackQuantity)
	}
	if supplied["allow_backorder"] {
		set("allow_backorder", payload.AllowBackorder)
	}
	if supplied["low_stock_alert"] {
		set("low_stock_alert", payload.LowStockAlert)
	}
	if supplied["reserved_stock"] {
		set("reserved_stock", payload.ReservedStock)
	}
	if supplied["max_stock"] {
		set("max_stock", payload.MaxStock)
	}
	if supplied["weight"] {
		set("weight", payload.Weight)
	}
	if supplied["weight_unit"] {
		set("weight_unit", nullable(payload.WeightUnit))
	}
	if supplied["length"] {
		set("length", payload.Length)
	}
	if supplied["width"] {
		set("width", payload.Width)
	}
	if supplied["height"] {
		set("height", payload.Height)
	}
	if supplied["dimension_unit"] {
		set("dimension_unit", nullable(payload.DimensionUnit))
	}
	if supplied["requires_shipping"] {
		set("requires_shipping", *payload.RequiresShipping)
	}
	if supplied["shipping_class"] {
		set("shipping_class", nullable(payload.ShippingClass))
	}
	if supplied["status"] {
		set("status", payload.Status)
	}
	if supplied["mark"] {
		set("mark", nullable(payload.Mark))
	}
	if supplied["seo_title"] {
		set("seo_title", nullable(payload.SEOTitle))
	}
	if supplied["seo_description"] {
		set("seo_description", nullable(payload.SEODescription))
	}
	if supplied["category_id"] {
		set("category_id", nullable(payload.CategoryID))
	}
	if supplied["subcategory_id"] {
		set("subcategory_id", nullable(payload.SubcategoryID))
	}
	if supplied["brand_id"] {
		set("brand_id", nullable(payload.BrandID))
	}

	updateArgs = append(updateArgs, id)
	_, err = DB.Exec(fmt.Sprintf(
		"UPDATE products SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(setClauses, ", "), argIdx,
	), updateArgs...)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Referenced category, subcategory or brand does not exist"})
			return
		}
		log.Printf("Failed to update product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	childErrors = append(childErrors, insertProductChildren(uuid.MustParse(id), payload)...)

	// Invalidate both the old and new locations of the product.
	paths := productPaths(currentSlug, nullString(currentCategoryID), nullString(currentBrandID))
	paths = mergePaths(paths, productPaths(slug, payload.CategoryID, payload.BrandID))
	services.Revalidator.RevalidatePaths(paths)

	resp := gin.H{"message": "Product updated successfully", "id": id, "slug": slug}
	if len(childErrors) > 0 {
		resp["errors"] = childErrors
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteProduct removes a product and all its child rows.
func DeleteProduct(c *gin.Context) {
	deleteProduct(c, c.Param("id"))
}

// DeleteProductByPayload is the command-style variant of DeleteProduct.
func DeleteProductByPayload(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	deleteProduct(c, payload.ID)
}

func deleteProduct(c *gin.Context, id string) {
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var slug string
	var categoryID, brandID sql.NullString
	err := DB.QueryRow(
		`SELECT slug, category_id, brand_id FROM products WHERE id = $1`, id,
	).Scan(&slug, &categoryID, &brandID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to load product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	variantIDs, err := fetchVariantIDs(id)
	includeVariants := err == nil
	if err != nil {
		log.Printf("Failed to fetch variant ids for product %s: %v", id, err)
	}
	deleteProductChildren(id, variantIDs, includeVariants)

	result, err := DB.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		log.Printf("Failed to delete product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	services.Revalidator.RevalidatePaths(productPaths(slug, nullString(categoryID), nullString(brandID)))

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// productPaths returns every storefront path affected by a product change.
// categoryID/brandID accept a uuid string or nil-like empty interface value.
func productPaths(slug string, categoryID, brandID interface{}) []string {
	paths := []string{"/", "/products", "/products/" + slug}
	if s := referencedSlug("categories", categoryID); s != "" {
		paths = append(paths, "/category/"+s)
	}
	if s := referencedSlug("brands", brandID); s != "" {
		paths = append(paths, "/brand/"+s)
	}
	return paths
}

// referencedSlug looks up the slug of a referenced row, tolerating missing
// references since revalidation is best-effort.
func referencedSlug(table string, id interface{}) string {
	idStr, ok := id.(string)
	if !ok || idStr == "" {
		return ""
	}
	var slug string
	err := DB.QueryRow(`SELECT slug FROM `+table+` WHERE id = $1`, idStr).Scan(&slug)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Failed to look up %s slug for %s: %v", table, idStr, err)
		}
		return ""
	}
	return slug
}

// mergePaths unions two path lists, preserving order and dropping duplicates.
func mergePaths(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, p := range append(a, b...) {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	return merged
}

func nullString(v sql.NullString) interface{} {
	if !v.Valid {
		return nil
	}
	return v.String
}
