package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/anggr/haev-revalidate/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminSignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminSignup creates an admin account with a hashed password.
func AdminSignup(c *gin.Context) {
	var req AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingID string
	err := DB.QueryRow(`SELECT id FROM admin_users WHERE email = $1`, req.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != sql.ErrNoRows {
		log.Printf("Failed to check admin email %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin account"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	admin := models.AdminUser{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         "admin",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	_, err = DB.Exec(`
		INSERT INTO admin_users (id, email, password_hash, full_name, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.FullName, admin.Role, admin.IsActive, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		log.Printf("Failed to insert admin user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin account created successfully",
		"user_id": admin.ID,
		"email":   admin.Email,
		"role":    admin.Role,
	})
}

// AdminLogin verifies credentials and returns a signed token.
func AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var userID, email, fullName, role, passwordHash string
	var isActive bool
	var createdAt time.Time
	err := DB.QueryRow(`
		SELECT id, email, full_name, role, is_active, password_hash, created_at
		FROM admin_users WHERE email = $1`, req.Email).Scan(
		&userID, &email, &fullName, &role, &isActive, &passwordHash, &createdAt)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !isActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateJWT(userID, email)
	if err != nil {
		log.Printf("Failed to sign token for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":         userID,
			"email":      email,
			"full_name":  fullName,
			"role":       role,
			"is_active":  isActive,
			"created_at": createdAt,
		},
	})
}
