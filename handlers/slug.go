package handlers

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

// generateSlug derives a URL-safe identifier from a display name: lowercase,
// non-alphanumeric runs collapsed to single hyphens, leading/trailing hyphens
// trimmed. generateSlug("Men's T-Shirt!") -> "mens-t-shirt".
func generateSlug(name string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading separators

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == '\'' || r == '’':
			// Apostrophes vanish instead of hyphenating: "Men's" -> "mens"
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// ensureUniqueSlug probes the table for the candidate slug and appends an
// incrementing numeric suffix until no other row uses it. excludeID may be
// empty (create) or the current row's id (update), which is allowed to keep
// its own slug. Sequential check-then-act: concurrent writers racing on the
// same base name are caught by the table's unique index, not here.
func ensureUniqueSlug(table, candidate, excludeID string) (string, error) {
	slug := candidate
	for suffix := 1; ; suffix++ {
		var existingID string
		var err error
		if excludeID != "" {
			err = DB.QueryRow(
				`SELECT id FROM `+table+` WHERE slug = $1 AND id != $2`, slug, excludeID,
			).Scan(&existingID)
		} else {
			err = DB.QueryRow(
				`SELECT id FROM `+table+` WHERE slug = $1`, slug,
			).Scan(&existingID)
		}

		if err != nil {
			// No row means the slug is free; any other error is returned
			// so the caller can surface it.
			if err == sql.ErrNoRows {
				return slug, nil
			}
			return "", err
		}

		slug = fmt.Sprintf("%s-%d", candidate, suffix)
	}
}

// ensureUniqueSubcategorySlug is the per-parent variant used by
// subcategories, whose slugs are unique within their category.
func ensureUniqueSubcategorySlug(categoryID, candidate, excludeID string) (string, error) {
	slug := candidate
	for suffix := 1; ; suffix++ {
		var existingID string
		var err error
		if excludeID != "" {
			err = DB.QueryRow(
				`SELECT id FROM subcategories WHERE category_id = $1 AND slug = $2 AND id != $3`,
				categoryID, slug, excludeID,
			).Scan(&existingID)
		} else {
			err = DB.QueryRow(
				`SELECT id FROM subcategories WHERE category_id = $1 AND slug = $2`,
				categoryID, slug,
			).Scan(&existingID)
		}

		if err != nil {
			if err == sql.ErrNoRows {
				return slug, nil
			}
			return "", err
		}

		slug = fmt.Sprintf("%s-%d", candidate, suffix)
	}
}
