package webserver

import (
	"errors"
	"log"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/relay"
)

type Governance struct {
	orch *relay.Orchestrator
}

func NewGovernance(orch *relay.Orchestrator) Governance {
	return Governance{orch: orch}
}

// VoteGasless relays a signed vote with the operator paying gas. The
// governance contract recovers the signer and checks eligibility; a bad
// signature is a caller error surfaced verbatim, never retried.
func (g Governance) VoteGasless(c *gin.Context) {
	var req struct {
		VentureID  uint64 `json:"ventureId" binding:"required"`
		ProposalID string `json:"proposalId" binding:"required"`
		Support    *uint8 `json:"support" binding:"required"`
		V          uint8  `json:"v" binding:"required"`
		R          string `json:"r" binding:"required"`
		S          string `json:"s" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	proposalID, ok := new(big.Int).SetString(req.ProposalID, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid proposalId"})
		return
	}

	txHash, err := g.orch.RelayVote(c.Request.Context(), relay.VoteInput{
		VentureID:  req.VentureID,
		ProposalID: proposalID,
		Support:    *req.Support,
		V:          req.V,
		R:          common.HexToHash(req.R),
		S:          common.HexToHash(req.S),
	})
	if err != nil {
		log.Printf("gasless vote relay: %v", err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": "the server failed to relay your vote", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Your vote has been successfully and freely cast on the blockchain!",
		"transactionHash": txHash,
	})
}
