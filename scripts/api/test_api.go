// Minimal end-to-end smoke test for the VentureHUB API. Exercises the
// account, marketplace and read endpoints against a running instance; the
// chain-relaying endpoints need a funded operator and are left to manual
// testing.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:8080/api")
	redisURL = getenv("REDIS_URL", "redis://localhost:6379/0")
	wallet   = "0x90F79bf6EB2c4f870365E785982E1f101E93b906" // dev account
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	rdb := mustRedis()
	defer rdb.Close()

	events := rdb.Subscribe(ctx, "venturehub:events")
	defer events.Close()

	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])
	register(email)
	token := login(email)
	linkWallet(token)

	listVentures(token)
	listingID := recordListing(token)
	listListings(token)
	cancelListing(token, listingID)
	awaitEvent(ctx, events, "listing_updated")
	portfolio(token)

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- auth

func register(email string) {
	doJSON("POST", "/auth/register", map[string]any{
		"fullName": "Smoke Tester",
		"email":    email,
		"password": "hunter2hunter2",
		"role":     "vc",
	}, nil, http.StatusCreated, "")
}

func login(email string) string {
	var resp struct{ Token string }
	doJSON("POST", "/auth/login", map[string]any{
		"email":    email,
		"password": "hunter2hunter2",
	}, &resp, http.StatusOK, "")
	if resp.Token == "" {
		log.Fatal("login: empty token")
	}
	return resp.Token
}

func linkWallet(token string) {
	doJSON("POST", "/users/link-wallet", map[string]any{
		"walletAddress": wallet,
	}, nil, http.StatusOK, token)
}

// ----------------------------- marketplace

func recordListing(token string) string {
	listingID := uuid.NewString()
	doJSON("POST", "/market/listings", map[string]any{
		"listingOnchainId":  listingID,
		"ventureId":         1,
		"sellerAddress":     wallet,
		"shareTokenAddress": "0x0000000000000000000000000000000000000001",
		"amount":            "1000000000000000000",
		"pricePerShare":     "1250000",
	}, nil, http.StatusCreated, token)
	return listingID
}

func cancelListing(token, listingID string) {
	doJSON("PUT", "/market/listings/"+listingID, map[string]any{
		"status": "cancelled",
	}, nil, http.StatusOK, token)
}

func awaitEvent(ctx context.Context, sub *redis.PubSub, wantType string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			log.Fatalf("await %s event: %v", wantType, err)
		}
		var event struct {
			Type string `json:"type"`
		}
		if json.Unmarshal([]byte(msg.Payload), &event) == nil && event.Type == wantType {
			fmt.Printf("received %s event\n", wantType)
			return
		}
	}
}

// ----------------------------- reads

func listVentures(token string) {
	var resp []map[string]any
	doJSON("GET", "/ventures", nil, &resp, http.StatusOK, token)
	fmt.Printf("ventures: %d rows\n", len(resp))
}

func listListings(token string) {
	var resp []map[string]any
	doJSON("GET", "/market/listings", nil, &resp, http.StatusOK, token)
	fmt.Printf("open listings: %d rows\n", len(resp))
}

func portfolio(token string) {
	var resp []map[string]any
	doJSON("GET", "/portfolio/all", nil, &resp, http.StatusOK, token)
	fmt.Printf("portfolio: %d holdings\n", len(resp))
}

// ----------------------------- plumbing

func mustRedis() *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping: %v", err)
	}
	return rdb
}

func doJSON(method, path string, body any, out any, wantStatus int, token string) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		log.Fatalf("%s %s: status %d (want %d): %v", method, path, resp.StatusCode, wantStatus, errBody)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}
