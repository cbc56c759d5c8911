package webserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

func issueJWT(userID uint64, email, role string, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"email": email,
		"role":  role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseJWT(token string, secret []byte) (userID uint64, email, role string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, "", "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return 0, "", "", fmt.Errorf("invalid token")
	}

	sub, _ := claims["sub"].(string)
	userID, err = strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid subject: %w", err)
	}
	email, _ = claims["email"].(string)
	role, _ = claims["role"].(string)
	return userID, email, role, nil
}

// RequireAuth validates the bearer token and stores the caller identity in
// the request context under "uid", "email" and "role".
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "missing bearer token"})
			return
		}

		userID, email, role, err := parseJWT(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid token"})
			return
		}

		c.Set("uid", userID)
		c.Set("email", email)
		c.Set("role", role)
		c.Next()
	}
}

func userID(c *gin.Context) uint64 {
	return c.GetUint64("uid")
}
