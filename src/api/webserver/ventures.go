package webserver

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/data"
	"github.com/venturehub/venturehub/src/api/reads"
	"github.com/venturehub/venturehub/src/api/relay"
	"github.com/venturehub/venturehub/src/api/types"
)

// 5 MiB is plenty for a logo.
const maxLogoBytes = 5 << 20

type Ventures struct {
	db        *gorm.DB
	rdb       *redis.Client
	orch      *relay.Orchestrator
	reader    *reads.Reader
	sanitizer *bluemonday.Policy
}

func NewVentures(db *gorm.DB, rdb *redis.Client, orch *relay.Orchestrator, reader *reads.Reader) Ventures {
	return Ventures{db: db, rdb: rdb, orch: orch, reader: reader, sanitizer: bluemonday.StrictPolicy()}
}

func (v Ventures) Create(c *gin.Context) {
	name := c.PostForm("ventureName")
	industry := c.PostForm("industry")
	mission := c.PostForm("mission")
	teamInfo := c.PostForm("teamInfo")
	goalStr := c.PostForm("fundraisingGoal")
	sharesStr := c.PostForm("totalShares")

	if name == "" || industry == "" || mission == "" || goalStr == "" || sharesStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing required fields"})
		return
	}

	goal, err := decimal.NewFromString(goalStr)
	if err != nil || !goal.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"err": "fundraisingGoal must be a positive decimal"})
		return
	}
	totalShares, err := decimal.NewFromString(sharesStr)
	if err != nil || !totalShares.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"err": "totalShares must be a positive decimal"})
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "logo file is required"})
		return
	}
	if file.Size > maxLogoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"err": "logo too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "could not read logo"})
		return
	}
	defer f.Close()
	logo, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "could not read logo"})
		return
	}

	result, err := v.orch.CreateVenture(c.Request.Context(), relay.CreateVentureInput{
		UserID:          userID(c),
		Name:            v.sanitizer.Sanitize(name),
		Industry:        v.sanitizer.Sanitize(industry),
		Mission:         v.sanitizer.Sanitize(mission),
		TeamInfo:        v.sanitizer.Sanitize(teamInfo),
		FundraisingGoal: goal,
		TotalShares:     totalShares,
		Logo:            logo,
	})
	if err != nil {
		log.Printf("venture creation: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, relay.ErrPrecursorMissing) || errors.Is(err, relay.ErrQuantityTooSmall) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"err": "venture creation failed", "details": err.Error()})
		return
	}

	data.PublishEvent(c.Request.Context(), v.rdb, map[string]any{
		"type":      "venture_created",
		"ventureId": result.VentureID,
		"name":      name,
		"founder":   userID(c),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Venture launched successfully!",
		"ventureId":       result.VentureID,
		"transactionHash": result.TxHash,
	})
}

func (v Ventures) List(c *gin.Context) {
	var ventures []types.Venture
	if err := v.db.Select("id", "name", "industry", "logo_url", "fundraising_goal",
		"sale_treasury_address", "total_shares").
		Order("created_at desc").Find(&ventures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error"})
		return
	}
	c.JSON(http.StatusOK, ventures)
}

func (v Ventures) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid venture id"})
		return
	}

	var venture types.Venture
	if err := v.db.First(&venture, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
		return
	}
	c.JSON(http.StatusOK, venture)
}

func (v Ventures) Stats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid venture id"})
		return
	}

	var cached types.VentureStats
	if data.CachedStats(c.Request.Context(), v.rdb, c.Param("id"), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := v.reader.Stats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		log.Printf("stats for venture %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error fetching stats"})
		return
	}

	data.CacheStats(c.Request.Context(), v.rdb, c.Param("id"), stats)
	c.JSON(http.StatusOK, stats)
}

func (v Ventures) Dashboard(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid venture id"})
		return
	}

	dashboard, err := v.reader.Dashboard(c.Request.Context(), id, userID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		log.Printf("dashboard for venture %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error fetching dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (v Ventures) Shareholders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid venture id"})
		return
	}

	shareholders, err := v.reader.Shareholders(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "venture not found"})
			return
		}
		log.Printf("shareholders for venture %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "server error fetching shareholders"})
		return
	}
	c.JSON(http.StatusOK, shareholders)
}
