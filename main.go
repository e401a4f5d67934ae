package main

import (
	"log"
	"net/http"

	"github.com/anggr/haev-revalidate/config"
	"github.com/anggr/haev-revalidate/database"
	"github.com/anggr/haev-revalidate/handlers"
	"github.com/anggr/haev-revalidate/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	// Initialize image storage. Missing credentials disable uploads but do
	// not stop the server.
	if config.AppConfig.CloudinaryURL != "" {
		if err := services.InitializeCloudinary(config.AppConfig.CloudinaryURL); err != nil {
			log.Printf("Failed to initialize Cloudinary: %v", err)
		}
	} else {
		log.Println("CLOUDINARY_URL not set, image uploads disabled")
	}

	// Initialize the storefront revalidation service
	services.InitializeRevalidator(config.AppConfig.StorefrontURLs, config.AppConfig.RevalidateSecret)

	// Wire handlers to the database
	handlers.InitializeHandlers(db)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Haev admin server is running",
		})
	})

	// Admin authentication
	router.POST("/admin/signup", handlers.AdminSignup)
	router.POST("/admin/login", handlers.AdminLogin)

	api := router.Group("/api")
	{
		// Public read endpoints consumed by the storefront
		api.GET("/products", handlers.GetProducts)
		api.GET("/products/slug/:slug", handlers.GetProductBySlug)
		api.GET("/products/:id", handlers.GetProduct)
		api.GET("/categories", handlers.GetCategories)
		api.GET("/categories/:id", handlers.GetCategory)
		api.GET("/categories/:id/subcategories", handlers.GetSubcategories)
		api.GET("/brands", handlers.GetBrands)
		api.GET("/brands/:id", handlers.GetBrand)
		api.GET("/testimonials", handlers.GetTestimonials)

		// Admin write endpoints (protected)
		admin := api.Group("")
		admin.Use(handlers.AuthMiddleware(), handlers.AdminMiddleware())
		{
			admin.POST("/products", handlers.CreateProduct)
			admin.PATCH("/products/:id", handlers.UpdateProduct)
			admin.PUT("/products/:id", handlers.UpdateProduct)
			admin.DELETE("/products/:id", handlers.DeleteProduct)
			admin.POST("/products/create", handlers.CreateProduct)
			admin.POST("/products/update", handlers.UpdateProductByPayload)
			admin.POST("/products/delete", handlers.DeleteProductByPayload)

			admin.POST("/categories", handlers.CreateCategory)
			admin.PATCH("/categories/:id", handlers.UpdateCategory)
			admin.PUT("/categories/:id", handlers.UpdateCategory)
			admin.DELETE("/categories/:id", handlers.DeleteCategory)
			admin.POST("/categories/create", handlers.CreateCategory)
			admin.POST("/categories/update", handlers.UpdateCategoryByPayload)
			admin.POST("/categories/delete", handlers.DeleteCategoryByPayload)

			admin.POST("/categories/:id/subcategories", handlers.CreateSubcategory)
			admin.PATCH("/categories/:id/subcategories/:subId", handlers.UpdateSubcategory)
			admin.PUT("/categories/:id/subcategories/:subId", handlers.UpdateSubcategory)
			admin.DELETE("/categories/:id/subcategories/:subId", handlers.DeleteSubcategory)

			admin.POST("/brands", handlers.CreateBrand)
			admin.PATCH("/brands/:id", handlers.UpdateBrand)
			admin.PUT("/brands/:id", handlers.UpdateBrand)
			admin.DELETE("/brands/:id", handlers.DeleteBrand)
			admin.POST("/brands/create", handlers.CreateBrand)
			admin.POST("/brands/update", handlers.UpdateBrandByPayload)
			admin.POST("/brands/delete", handlers.DeleteBrandByPayload)

			admin.POST("/testimonials", handlers.CreateTestimonial)
			admin.DELETE("/testimonials/:id", handlers.DeleteTestimonial)

			admin.POST("/admin/upload", handlers.UploadImage)
			admin.POST("/admin/upload/delete", handlers.DeleteImage)
		}
	}

	// Start server
	log.Printf("Starting Haev admin server on 0.0.0.0:%s", config.AppConfig.ServerPort)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, c.Handler(router)))
}
