package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/anggr/haev-revalidate/models"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// Enable pgcrypto extension for gen_random_uuid()
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Define the order of table creation (respecting foreign key dependencies)
	tables := []interface{}{
		models.Category{},
		models.Subcategory{},
		models.Brand{},
		models.Product{},
		models.ProductImage{},
		models.ProductFeature{},
		models.ProductVariant{},
		models.VariantAttribute{},
		models.VariantFeature{},
		models.ProductTag{},
		models.ProductFAQ{},
		models.ProductTestimonialVideo{},
		models.CustomerTestimonial{},
		models.AdminUser{},
	}

	for _, table := range tables {
		if tableModel, ok := table.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	// Run schema migrations
	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// runMigrations handles schema updates for existing tables
func (db *DB) runMigrations() error {
	migrations := []string{
		// Shipping fields added after the first deploy
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS shipping_class TEXT;`,
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS reserved_stock INTEGER;`,
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS max_stock INTEGER;`,

		// Rating aggregates
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS rating NUMERIC(3,2) NOT NULL DEFAULT 0;`,
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS rating_count INTEGER NOT NULL DEFAULT 0;`,

		// Category banners
		`ALTER TABLE categories ADD COLUMN IF NOT EXISTS banner TEXT;`,
		`ALTER TABLE categories ADD COLUMN IF NOT EXISTS banner_sm TEXT;`,
		`ALTER TABLE categories ADD COLUMN IF NOT EXISTS sort_order INTEGER NOT NULL DEFAULT 0;`,

		// Brand visuals
		`ALTER TABLE brands ADD COLUMN IF NOT EXISTS logo TEXT;`,
		`ALTER TABLE brands ADD COLUMN IF NOT EXISTS banner TEXT;`,

		// Variant media overrides
		`ALTER TABLE product_variants ADD COLUMN IF NOT EXISTS image_url TEXT;`,
		`ALTER TABLE product_variants ADD COLUMN IF NOT EXISTS icon TEXT;`,

		// Testimonial images
		`ALTER TABLE customer_testimonials ADD COLUMN IF NOT EXISTS image_url TEXT;`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			log.Printf("Warning: Migration %d failed: %v", i+1, err)
			// Continue with other migrations even if one fails
		}
	}

	log.Println("Migrations completed!")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
