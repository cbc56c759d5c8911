package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/data"
	"github.com/venturehub/venturehub/src/api/relay"
)

type Admin struct {
	db   *gorm.DB
	orch *relay.Orchestrator
}

func NewAdmin(db *gorm.DB, orch *relay.Orchestrator) Admin {
	return Admin{db: db, orch: orch}
}

// SetPrice pushes a new share price to the sale treasury. Admin only; the
// price takes effect on-chain and is never mirrored into the index.
func (a Admin) SetPrice(c *gin.Context) {
	if c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"err": "admin role required"})
		return
	}

	var req struct {
		VentureID uint64 `json:"ventureId" binding:"required"`
		NewPrice  string `json:"newPrice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.NewPrice)
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"err": "newPrice must be a positive decimal"})
		return
	}

	txHash, err := a.orch.SetPrice(c.Request.Context(), req.VentureID, price)
	if err != nil {
		log.Printf("set price for venture %d: %v", req.VentureID, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error setting price"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Price updated", "transactionHash": txHash})
}

// RefreshSettings reloads the settings-table cache without a restart, for
// values operators manage in the database.
func (a Admin) RefreshSettings(c *gin.Context) {
	if c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"err": "admin role required"})
		return
	}

	if err := data.RefreshSettings(a.db); err != nil {
		log.Printf("refresh settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error refreshing settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings reloaded"})
}
