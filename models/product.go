package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductMarks is the closed set of promotional labels a product may carry.
var ProductMarks = []string{
	"best seller", "new arrival", "limited edition", "trending", "top rated", "on sale",
}

type Product struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Slug             string           `json:"slug" db:"slug"`
	Description      *string          `json:"description" db:"description"`
	LongDescription  *string          `json:"long_description" db:"long_description"`
	SKU              *string          `json:"sku" db:"sku"`
	Price            decimal.Decimal  `json:"price" db:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compare_at_price" db:"compare_at_price"`
	CostPrice        *decimal.Decimal `json:"cost_price" db:"cost_price"`
	Currency         string           `json:"currency" db:"currency"`
	Quantity         int              `json:"quantity" db:"quantity"`
	TrackQuantity    bool             `json:"track_quantity" db:"track_quantity"`
	AllowBackorder   bool             `json:"allow_backorder" db:"allow_backorder"`
	LowStockAlert    *int             `json:"low_stock_alert" db:"low_stock_alert"`
	ReservedStock    *int             `json:"reserved_stock" db:"reserved_stock"`
	MaxStock         *int             `json:"max_stock" db:"max_stock"`
	Weight           *float64         `json:"weight" db:"weight"`
	WeightUnit       *string          `json:"weight_unit" db:"weight_unit"`
	Length           *float64         `json:"length" db:"length"`
	Width            *float64         `json:"width" db:"width"`
	Height           *float64         `json:"height" db:"height"`
	DimensionUnit    *string          `json:"dimension_unit" db:"dimension_unit"`
	RequiresShipping bool             `json:"requires_shipping" db:"requires_shipping"`
	ShippingClass    *string          `json:"shipping_class" db:"shipping_class"`
	Status           string           `json:"status" db:"status"`
	Mark             *string          `json:"mark" db:"mark"`
	SEOTitle         *string          `json:"seo_title" db:"seo_title"`
	SEODescription   *string          `json:"seo_description" db:"seo_description"`
	Rating           float64          `json:"rating" db:"rating"`
	RatingCount      int              `json:"rating_count" db:"rating_count"`
	CategoryID       *uuid.UUID       `json:"category_id" db:"category_id"`
	SubcategoryID    *uuid.UUID       `json:"subcategory_id" db:"subcategory_id"`
	BrandID          *uuid.UUID       `json:"brand_id" db:"brand_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (Product) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		long_description TEXT,
		sku TEXT,
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		compare_at_price NUMERIC(12,2),
		cost_price NUMERIC(12,2),
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		quantity INTEGER NOT NULL DEFAULT 0,
		track_quantity BOOLEAN NOT NULL DEFAULT TRUE,
		allow_backorder BOOLEAN NOT NULL DEFAULT FALSE,
		low_stock_alert INTEGER,
		reserved_stock INTEGER,
		max_stock INTEGER,
		weight DOUBLE PRECISION,
		weight_unit VARCHAR(10),
		length DOUBLE PRECISION,
		width DOUBLE PRECISION,
		height DOUBLE PRECISION,
		dimension_unit VARCHAR(10),
		requires_shipping BOOLEAN NOT NULL DEFAULT TRUE,
		shipping_class TEXT,
		status VARCHAR(10) NOT NULL DEFAULT 'draft' CHECK (status IN ('active', 'draft')),
		mark TEXT,
		seo_title TEXT,
		seo_description TEXT,
		rating NUMERIC(3,2) NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		subcategory_id UUID REFERENCES subcategories(id) ON DELETE SET NULL,
		brand_id UUID REFERENCES brands(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
	CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_id);
	CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);`
}
