package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/relay"
)

type Proposals struct {
	orch *relay.Orchestrator
}

func NewProposals(orch *relay.Orchestrator) Proposals {
	return Proposals{orch: orch}
}

// Create relays a governance proposal on the operator's behalf. The title
// and description go on-chain as submitted; the orchestrator persists the
// exact same bytes so the description hash can be recomputed later.
func (p Proposals) Create(c *gin.Context) {
	var req struct {
		VentureID    uint64 `json:"ventureId" binding:"required"`
		Title        string `json:"title" binding:"required,max=255"`
		Description  string `json:"description" binding:"required,max=10000"`
		ProposalType string `json:"proposalType" binding:"required,oneof=general_discussion distribute_funds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	result, err := p.orch.RelayProposal(c.Request.Context(), relay.ProposalInput{
		VentureID:   req.VentureID,
		ProposerID:  userID(c),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.ProposalType,
	})
	if err != nil {
		log.Printf("proposal relay: %v", err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server failed to relay proposal", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Proposal submitted successfully!",
		"proposalId":      result.ProposalID,
		"transactionHash": result.TxHash,
	})
}
