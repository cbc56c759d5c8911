package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturehub/venturehub/src/api/reads"
)

type Portfolio struct {
	reader *reads.Reader
}

func NewPortfolio(reader *reads.Reader) Portfolio {
	return Portfolio{reader: reader}
}

// All returns every venture the caller holds live shares in. An empty list
// is a valid result, including for users with no linked wallet.
func (p Portfolio) All(c *gin.Context) {
	portfolio, err := p.reader.Portfolio(c.Request.Context(), userID(c))
	if err != nil {
		log.Printf("portfolio for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error fetching portfolio"})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}
