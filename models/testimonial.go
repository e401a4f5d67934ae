package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerTestimonial is either product-scoped (product_id set) or
// standalone/global (product_id NULL).
type CustomerTestimonial struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ProductID    *uuid.UUID `json:"product_id" db:"product_id"`
	CustomerName string     `json:"customer_name" db:"customer_name"`
	Text         string     `json:"text" db:"text"`
	Rating       *float64   `json:"rating" db:"rating"`
	ImageURL     *string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func (CustomerTestimonial) TableName() string {
	return "customer_testimonials"
}

func (CustomerTestimonial) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS customer_testimonials (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID REFERENCES products(id) ON DELETE CASCADE,
		customer_name TEXT NOT NULL,
		text TEXT NOT NULL,
		rating NUMERIC(2,1) CHECK (rating >= 0 AND rating <= 5),
		image_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_customer_testimonials_product ON customer_testimonials(product_id);`
}
