package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/types"
)

type Auth struct {
	db     *gorm.DB
	secret []byte
}

func NewAuth(db *gorm.DB, secret []byte) Auth {
	return Auth{db: db, secret: secret}
}

func (a Auth) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName" binding:"required,min=2,max=255"`
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required,min=8,max=128"`
		Role     string `json:"role" binding:"required,oneof=entrepreneur vc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var existing types.User
	if err := a.db.First(&existing, "email = ?", req.Email).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"err": "user already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to hash password"})
		return
	}

	user := types.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "user already exists"})
			return
		}
		log.Printf("register %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully!"})
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var user types.User
	if err := a.db.First(&user, "email = ?", req.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}

	token, err := issueJWT(user.ID, user.Email, user.Role, a.secret)
	if err != nil {
		log.Printf("issue token for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":            user.ID,
			"fullName":      user.FullName,
			"email":         user.Email,
			"role":          user.Role,
			"walletAddress": user.WalletAddress,
		},
	})
}
