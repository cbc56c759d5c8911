package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/types"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) Users {
	return Users{db: db}
}

// LinkWallet attaches a wallet address to the calling user. Addresses are
// unique across users; a duplicate is a client conflict, not a server fault.
func (u Users) LinkWallet(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if !common.IsHexAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid wallet address"})
		return
	}
	addr := common.HexToAddress(req.WalletAddress).Hex()

	err := u.db.Model(&types.User{}).Where("id = ?", userID(c)).
		Update("wallet_address", addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"err": "this wallet address is already linked to another account"})
			return
		}
		log.Printf("link wallet for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet linked successfully!"})
}
