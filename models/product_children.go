package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

func (ProductImage) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_images (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);`
}

type ProductFeature struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Icon        *string   `json:"icon" db:"icon"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
}

func (ProductFeature) TableName() string {
	return "product_features"
}

func (ProductFeature) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_features (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		icon TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_product_features_product ON product_features(product_id);`
}

type ProductVariant struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	ProductID      uuid.UUID        `json:"product_id" db:"product_id"`
	Name           string           `json:"name" db:"name"`
	Price          *decimal.Decimal `json:"price" db:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price" db:"compare_at_price"`
	SKU            *string          `json:"sku" db:"sku"`
	Quantity       *int             `json:"quantity" db:"quantity"`
	ImageURL       *string          `json:"image_url" db:"image_url"`
	Icon           *string          `json:"icon" db:"icon"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

func (ProductVariant) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_variants (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		price NUMERIC(12,2),
		compare_at_price NUMERIC(12,2),
		sku TEXT,
		quantity INTEGER,
		image_url TEXT,
		icon TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants(product_id);`
}

// VariantAttribute is a name/value pair on a variant, e.g. Color=Red.
type VariantAttribute struct {
	ID        uuid.UUID `json:"id" db:"id"`
	VariantID uuid.UUID `json:"variant_id" db:"variant_id"`
	Name      string    `json:"name" db:"name"`
	Value     string    `json:"value" db:"value"`
}

func (VariantAttribute) TableName() string {
	return "variant_attributes"
}

func (VariantAttribute) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS variant_attributes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		variant_id UUID NOT NULL REFERENCES product_variants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_variant_attributes_variant ON variant_attributes(variant_id);`
}

type VariantFeature struct {
	ID        uuid.UUID `json:"id" db:"id"`
	VariantID uuid.UUID `json:"variant_id" db:"variant_id"`
	Text      string    `json:"text" db:"text"`
	Icon      *string   `json:"icon" db:"icon"`
}

func (VariantFeature) TableName() string {
	return "variant_features"
}

func (VariantFeature) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS variant_features (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		variant_id UUID NOT NULL REFERENCES product_variants(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		icon TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_variant_features_variant ON variant_features(variant_id);`
}

type ProductTag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Tag       string    `json:"tag" db:"tag"`
}

func (ProductTag) TableName() string {
	return "product_tags"
}

func (ProductTag) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_tags (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		tag TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_product_tags_product ON product_tags(product_id);`
}

type ProductFAQ struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
}

func (ProductFAQ) TableName() string {
	return "product_faqs"
}

func (ProductFAQ) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_faqs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_product_faqs_product ON product_faqs(product_id);`
}

type ProductTestimonialVideo struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	Title     *string   `json:"title" db:"title"`
}

func (ProductTestimonialVideo) TableName() string {
	return "product_testimonial_videos"
}

func (ProductTestimonialVideo) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS product_testimonial_videos (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_product_testimonial_videos_product ON product_testimonial_videos(product_id);`
}
