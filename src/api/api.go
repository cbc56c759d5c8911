package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/venturehub/venturehub/src/api/chain"
	"github.com/venturehub/venturehub/src/api/config"
	"github.com/venturehub/venturehub/src/api/data"
	"github.com/venturehub/venturehub/src/api/pinata"
	"github.com/venturehub/venturehub/src/api/reads"
	"github.com/venturehub/venturehub/src/api/relay"
	"github.com/venturehub/venturehub/src/api/webserver"
)

func main() {
	// Connect to database first
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "dev:test@tcp(localhost:3306)/venturehub"
	}
	db := data.MustMySQL(mysqlDSN)

	cfg := config.Load(db)
	rdb := data.MustRedis(cfg.RedisURL)

	ctx, cancel := context.WithCancel(context.Background())

	dialCtx, cancelDial := context.WithTimeout(ctx, 30*time.Second)
	chainClient, err := chain.Dial(dialCtx, cfg.RPCURL, cfg.OperatorKey)
	cancelDial()
	if err != nil {
		log.Fatalf("chain: %v", err)
	}
	defer chainClient.Close()
	log.Printf("Operator account: %s", chainClient.Operator().Hex())

	store := data.NewStore(db)
	pins := pinata.NewClient(cfg.PinataKey, cfg.PinataSecret, cfg.PinataURL)
	seq := chain.NewSequencer(chainClient)
	orch := relay.New(store, pins, chainClient, seq, common.HexToAddress(cfg.FactoryAddress))
	reader := reads.New(store, chainClient, common.HexToAddress(cfg.USDCAddress))

	router := webserver.New(cfg, db, rdb, orch, reader)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // venture creation waits on two confirmations
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("VentureHUB API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
