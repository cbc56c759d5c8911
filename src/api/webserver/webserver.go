package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/config"
	"github.com/venturehub/venturehub/src/api/reads"
	"github.com/venturehub/venturehub/src/api/relay"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, orch *relay.Orchestrator, reader *reads.Reader) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, orch, reader)
	return g
}

func attachRoutes(g *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, orch *relay.Orchestrator, reader *reads.Reader) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	g.Use(cors.New(corsCfg))

	api := g.Group("/api")

	auth := NewAuth(db, cfg.JWTSecret)
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)

	authed := api.Group("", RequireAuth(cfg.JWTSecret))

	users := NewUsers(db)
	authed.POST("/users/link-wallet", users.LinkWallet)

	ventures := NewVentures(db, rdb, orch, reader)
	authed.POST("/ventures/create", ventures.Create)
	authed.GET("/ventures", ventures.List)
	authed.GET("/ventures/:id", ventures.Get)
	authed.GET("/ventures/:id/stats", ventures.Stats)
	authed.GET("/ventures/:id/dashboard", ventures.Dashboard)
	authed.GET("/ventures/:id/shareholders", ventures.Shareholders)

	investments := NewInvestments(db)
	authed.POST("/investments/record", investments.Record)

	proposals := NewProposals(orch)
	authed.POST("/proposals/create", proposals.Create)

	governance := NewGovernance(orch)
	authed.POST("/governance/vote-gasless", governance.VoteGasless)

	market := NewMarket(db, rdb)
	authed.POST("/market/listings", market.Create)
	authed.PUT("/market/listings/:listingId", market.UpdateStatus)
	authed.GET("/market/listings", market.ListOpen)

	portfolio := NewPortfolio(reader)
	authed.GET("/portfolio/all", portfolio.All)

	admin := NewAdmin(db, orch)
	authed.POST("/admin/set-price", admin.SetPrice)
	authed.POST("/admin/refresh-settings", admin.RefreshSettings)
}
