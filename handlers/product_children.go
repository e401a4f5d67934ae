package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// insertProductChildren persists every child collection present in the
// payload, tagged with productID. Inserts are best-effort and per-row: a
// failed row is recorded and the remaining rows and collections still run.
// The returned list is empty when everything succeeded.
func insertProductChildren(productID uuid.UUID, p *ProductPayload) []string {
	var childErrors []string

	// Images: first one is primary, sort order is the list index.
	for i, url := range p.Images {
		_, err := DB.Exec(
			`INSERT INTO product_images (id, product_id, url, is_primary, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), productID, url, i == 0, i,
		)
		if err != nil {
			log.Printf("Failed to insert image %d for product %s: %v", i, productID, err)
			childErrors = append(childErrors, fmt.Sprintf("images[%d]: %v", i, err))
			continue
		}
	}

	for i, feature := range p.Features {
		_, err := DB.Exec(
			`INSERT INTO product_features (id, product_id, title, description, icon, sort_order) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), productID, feature.Title, nullable(feature.Description), nullable(feature.Icon), i,
		)
		if err != nil {
			log.Printf("Failed to insert feature %d for product %s: %v", i, productID, err)
			childErrors = append(childErrors, fmt.Sprintf("features[%d]: %v", i, err))
			continue
		}
	}

	// Variants first, then each variant's nested attributes and features
	// keyed by the new variant id. A failed variant skips only its own
	// nested rows, not the rest of the batch.
	for _, variant := range p.Variants {
		variantID := uuid.New()
		_, err := DB.Exec(
			`INSERT INTO product_variants (id, product_id, name, price, compare_at_price, sku, quantity, image_url, icon)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			variantID, productID, variant.Name, variant.Price, variant.CompareAtPrice,
			nullable(variant.SKU), variant.Quantity, nullable(variant.ImageURL), nullable(variant.Icon),
		)
		if err != nil {
			log.Printf("Failed to insert variant %q for product %s: %v", variant.Name, productID, err)
			childErrors = append(childErrors, fmt.Sprintf("variants (%s): %v", variant.Name, err))
			continue
		}

		for _, attr := range variant.Attributes {
			_, err := DB.Exec(
				`INSERT INTO variant_attributes (id, variant_id, name, value) VALUES ($1, $2, $3, $4)`,
				uuid.New(), variantID, attr.Name, attr.Value,
			)
			if err != nil {
				childErrors = append(childErrors, fmt.Sprintf("variant attributes (%s): %v", variant.Name, err))
				continue
			}
		}

		for _, vf := range variant.Features {
			_, err := DB.Exec(
				`INSERT INTO variant_features (id, variant_id, text, icon) VALUES ($1, $2, $3, $4)`,
				uuid.New(), variantID, vf.Text, nullable(vf.Icon),
			)
			if err != nil {
				childErrors = append(childErrors, fmt.Sprintf("variant features (%s): %v", variant.Name, err))
				continue
			}
		}
	}

	for _, tag := range p.Tags {
		_, err := DB.Exec(
			`INSERT INTO product_tags (id, product_id, tag) VALUES ($1, $2, $3)`,
			uuid.New(), productID, tag,
		)
		if err != nil {
			childErrors = append(childErrors, fmt.Sprintf("tags (%s): %v", tag, err))
			continue
		}
	}

	for i, faq := range p.FAQs {
		_, err := DB.Exec(
			`INSERT INTO product_faqs (id, product_id, question, answer, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), productID, faq.Question, faq.Answer, i,
		)
		if err != nil {
			childErrors = append(childErrors, fmt.Sprintf("faqs[%d]: %v", i, err))
			continue
		}
	}

	for _, video := range p.TestimonialVideos {
		_, err := DB.Exec(
			`INSERT INTO product_testimonial_videos (id, product_id, url, title) VALUES ($1, $2, $3, $4)`,
			uuid.New(), productID, video.URL, nullable(video.Title),
		)
		if err != nil {
			childErrors = append(childErrors, fmt.Sprintf("testimonial videos (%s): %v", video.URL, err))
			continue
		}
	}

	for _, t := range p.Testimonials {
		_, err := DB.Exec(
			`INSERT INTO customer_testimonials (id, product_id, customer_name, text, rating, image_url) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), productID, t.CustomerName, t.Text, t.Rating, nullable(t.ImageURL),
		)
		if err != nil {
			childErrors = append(childErrors, fmt.Sprintf("testimonials (%s): %v", t.CustomerName, err))
			continue
		}
	}

	return childErrors
}

// fetchVariantIDs returns the ids of a product's existing variants. Needed
// before a child-table purge because variant attributes/features are keyed
// by variant id, not product id.
func fetchVariantIDs(productID string) ([]string, error) {
	rows, err := DB.Query(`SELECT id FROM product_variants WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// deleteProductChildren purges every child table for the product as a batch
// of independent concurrent deletes, collecting failures without aborting.
// Variant attribute/feature rows are only deleted when their parent variant
// ids could be fetched; when includeVariants is false those tables (and the
// variants themselves) are left untouched.
func deleteProductChildren(productID string, variantIDs []string, includeVariants bool) []string {
	type deleteOp struct {
		label string
		query string
		args  []interface{}
	}

	ops := []deleteOp{
		{"images", `DELETE FROM product_images WHERE product_id = $1`, []interface{}{productID}},
		{"features", `DELETE FROM product_features WHERE product_id = $1`, []interface{}{productID}},
		{"tags", `DELETE FROM product_tags WHERE product_id = $1`, []interface{}{productID}},
		{"faqs", `DELETE FROM product_faqs WHERE product_id = $1`, []interface{}{productID}},
		{"testimonial videos", `DELETE FROM product_testimonial_videos WHERE product_id = $1`, []interface{}{productID}},
		{"testimonials", `DELETE FROM customer_testimonials WHERE product_id = $1`, []interface{}{productID}},
	}

	if includeVariants {
		if len(variantIDs) > 0 {
			ops = append(ops,
				deleteOp{"variant attributes", `DELETE FROM variant_attributes WHERE variant_id = ANY($1)`, []interface{}{pq.Array(variantIDs)}},
				deleteOp{"variant features", `DELETE FROM variant_features WHERE variant_id = ANY($1)`, []interface{}{pq.Array(variantIDs)}},
			)
		}
		ops = append(ops, deleteOp{"variants", `DELETE FROM product_variants WHERE product_id = $1`, []interface{}{productID}})
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		errors []string
	)

	for _, op := range ops {
		wg.Add(1)
		go func(op deleteOp) {
			defer wg.Done()
			if _, err := DB.Exec(op.query, op.args...); err != nil {
				log.Printf("Failed to delete %s for product %s: %v", op.label, productID, err)
				mu.Lock()
				errors = append(errors, fmt.Sprintf("delete %s: %v", op.label, err))
				mu.Unlock()
			}
		}(op)
	}
	wg.Wait()

	return errors
}

// fetchProductChildren loads every child collection for a product detail
// response. Missing collections come back as empty arrays, not null.
func fetchProductChildren(productID string) gin.H {
	images := []gin.H{}
	rows, err := DB.Query(
		`SELECT id, url, is_primary, sort_order FROM product_images WHERE product_id = $1 ORDER BY sort_order`, productID)
	if err == nil {
		for rows.Next() {
			var id, url string
			var isPrimary bool
			var sortOrder int
			if err := rows.Scan(&id, &url, &isPrimary, &sortOrder); err == nil {
				images = append(images, gin.H{"id": id, "url": url, "is_primary": isPrimary, "sort_order": sortOrder})
			}
		}
		rows.Close()
	}

	features := []gin.H{}
	rows, err = DB.Query(
		`SELECT id, title, description, icon FROM product_features WHERE product_id = $1 ORDER BY sort_order`, productID)
	if err == nil {
		for rows.Next() {
			var id, title string
			var description, icon sql.NullString
			if err := rows.Scan(&id, &title, &description, &icon); err == nil {
				features = append(features, gin.H{"id": id, "title": title, "description": description.String, "icon": icon.String})
			}
		}
		rows.Close()
	}

	variants := []gin.H{}
	rows, err = DB.Query(
		`SELECT id, name, price, compare_at_price, sku, quantity, image_url, icon
		 FROM product_variants WHERE product_id = $1 ORDER BY created_at`, productID)
	if err == nil {
		for rows.Next() {
			var id, name string
			var price, comparePrice sql.NullFloat64
			var skuCode, imageURL, icon sql.NullString
			var quantity sql.NullInt64
			if err := rows.Scan(&id, &name, &price, &comparePrice, &skuCode, &quantity, &imageURL, &icon); err != nil {
				continue
			}

			attributes := []gin.H{}
			attrRows, err := DB.Query(`SELECT id, name, value FROM variant_attributes WHERE variant_id = $1`, id)
			if err == nil {
				for attrRows.Next() {
					var attrID, attrName, attrValue string
					if err := attrRows.Scan(&attrID, &attrName, &attrValue); err == nil {
						attributes = append(attributes, gin.H{"id": attrID, "name": attrName, "value": attrValue})
					}
				}
				attrRows.Close()
			}

			variantFeatures := []gin.H{}
			vfRows, err := DB.Query(`SELECT id, text, icon FROM variant_features WHERE variant_id = $1`, id)
			if err == nil {
				for vfRows.Next() {
					var vfID, vfText string
					var vfIcon sql.NullString
					if err := vfRows.Scan(&vfID, &vfText, &vfIcon); err == nil {
						variantFeatures = append(variantFeatures, gin.H{"id": vfID, "text": vfText, "icon": vfIcon.String})
					}
				}
				vfRows.Close()
			}

			variants = append(variants, gin.H{
				"id":               id,
				"name":             name,
				"price":            nullFloat(price),
				"compare_at_price": nullFloat(comparePrice),
				"sku":              skuCode.String,
				"quantity":         nullInt(quantity),
				"image_url":        imageURL.String,
				"icon":             icon.String,
				"attributes":       attributes,
				"features":         variantFeatures,
			})
		}
		rows.Close()
	}

	tags := []string{}
	rows, err = DB.Query(`SELECT tag FROM product_tags WHERE product_id = $1`, productID)
	if err == nil {
		for rows.Next() {
			var tag string
			if err := rows.Scan(&tag); err == nil {
				tags = append(tags, tag)
			}
		}
		rows.Close()
	}

	faqs := []gin.H{}
	rows, err = DB.Query(
		`SELECT id, question, answer FROM product_faqs WHERE product_id = $1 ORDER BY sort_order`, productID)
	if err == nil {
		for rows.Next() {
			var id, question, answer string
			if err := rows.Scan(&id, &question, &answer); err == nil {
				faqs = append(faqs, gin.H{"id": id, "question": question, "answer": answer})
			}
		}
		rows.Close()
	}

	videos := []gin.H{}
	rows, err = DB.Query(`SELECT id, url, title FROM product_testimonial_videos WHERE product_id = $1`, productID)
	if err == nil {
		for rows.Next() {
			var id, url string
			var title sql.NullString
			if err := rows.Scan(&id, &url, &title); err == nil {
				videos = append(videos, gin.H{"id": id, "url": url, "title": title.String})
			}
		}
		rows.Close()
	}

	testimonials := []gin.H{}
	rows, err = DB.Query(
		`SELECT id, customer_name, text, rating, image_url FROM customer_testimonials WHERE product_id = $1`, productID)
	if err == nil {
		for rows.Next() {
			var id, customerName, text string
			var rating sql.NullFloat64
			var imageURL sql.NullString
			if err := rows.Scan(&id, &customerName, &text, &rating, &imageURL); err == nil {
				testimonials = append(testimonials, gin.H{
					"id": id, "customer_name": customerName, "text": text,
					"rating": nullFloat(rating), "image_url": imageURL.String,
				})
			}
		}
		rows.Close()
	}

	return gin.H{
		"images":             images,
		"features":           features,
		"variants":           variants,
		"tags":               tags,
		"faqs":               faqs,
		"testimonial_videos": videos,
		"testimonials":       testimonials,
	}
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullFloat(v sql.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func nullInt(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}
