package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/data"
	"github.com/venturehub/venturehub/src/api/types"
)

type Market struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewMarket(db *gorm.DB, rdb *redis.Client) Market {
	return Market{db: db, rdb: rdb}
}

// Create records a listing that already succeeded on-chain. The on-chain
// listing id is unique; recording the same one twice is a client conflict.
func (m Market) Create(c *gin.Context) {
	var req struct {
		ListingOnchainID  string `json:"listingOnchainId" binding:"required"`
		VentureID         uint64 `json:"ventureId" binding:"required"`
		SellerAddress     string `json:"sellerAddress" binding:"required"`
		ShareTokenAddress string `json:"shareTokenAddress" binding:"required"`
		Amount            string `json:"amount" binding:"required"`
		PricePerShare     string `json:"pricePerShare" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	listing := types.Listing{
		ListingOnchainID:  req.ListingOnchainID,
		VentureID:         req.VentureID,
		SellerAddress:     req.SellerAddress,
		ShareTokenAddress: req.ShareTokenAddress,
		Amount:            req.Amount,
		PricePerShare:     req.PricePerShare,
		Status:            types.ListingOpen,
	}
	if err := m.db.Create(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "this listing ID has already been recorded"})
			return
		}
		log.Printf("record listing %s: %v", req.ListingOnchainID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error recording listing"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Listing successfully recorded in database."})
}

// UpdateStatus moves a listing forward: open -> sold or open -> cancelled.
// A listing that already left the open state is never reopened or flipped.
func (m Market) UpdateStatus(c *gin.Context) {
	listingID := c.Param("listingId")

	var req struct {
		Status string `json:"status" binding:"required,oneof=sold cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "a valid status (sold or cancelled) is required"})
		return
	}

	res := m.db.Model(&types.Listing{}).
		Where("listing_onchain_id = ? AND status = ?", listingID, types.ListingOpen).
		Update("status", req.Status)
	if res.Error != nil {
		log.Printf("update listing %s: %v", listingID, res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error updating listing status"})
		return
	}
	if res.RowsAffected == 0 {
		var existing types.Listing
		if err := m.db.First(&existing, "listing_onchain_id = ?", listingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"err": "listing not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"err": "listing is already " + existing.Status})
		return
	}

	data.PublishEvent(c.Request.Context(), m.rdb, map[string]any{
		"type":      "listing_updated",
		"listingId": listingID,
		"status":    req.Status,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Listing " + listingID + " has been marked as " + req.Status + "."})
}

// ListOpen returns open listings joined with venture display fields.
func (m Market) ListOpen(c *gin.Context) {
	var listings []types.OpenListing
	err := m.db.Table("listings l").
		Select("l.listing_onchain_id, l.seller_address, l.share_token_address, l.amount, l.price_per_share, "+
			"v.id as venture_id, v.name as venture_name, v.logo_url as venture_logo").
		Joins("JOIN ventures v ON l.share_token_address = v.share_token_address").
		Where("l.status = ?", types.ListingOpen).
		Order("l.created_at desc").
		Scan(&listings).Error
	if err != nil {
		log.Printf("list open listings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error fetching listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}
