package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/types"
)

type Investments struct {
	db *gorm.DB
}

func NewInvestments(db *gorm.DB) Investments {
	return Investments{db: db}
}

// Record witnesses that the caller has invested in a venture. The row is
// created on first acquisition and never removed or updated: the live
// balance is always read from the ledger, never from here.
func (i Investments) Record(c *gin.Context) {
	var req struct {
		VentureID uint64 `json:"ventureId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var venture types.Venture
	if err := i.db.Select("id").First(&venture, req.VentureID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
		return
	}

	uid := userID(c)
	var existing types.Investment
	err := i.db.First(&existing, "user_id = ? AND venture_id = ?", uid, req.VentureID).Error
	switch {
	case err == nil:
		log.Printf("investment link for user %d in venture %d already exists", uid, req.VentureID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		link := types.Investment{UserID: uid, VentureID: req.VentureID, SharesOwned: "0"}
		if err := i.db.Create(&link).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("record investment for user %d: %v", uid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"err": "server error recording investment"})
			return
		}
		log.Printf("created investment link for user %d in venture %d", uid, req.VentureID)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error recording investment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment event acknowledged."})
}
