package config

import (
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/data"
)

type Config struct {
	Port           string
	RedisURL       string
	JWTSecret      []byte
	RPCURL         string
	OperatorKey    string
	FactoryAddress string
	USDCAddress    string
	PinataKey      string
	PinataSecret   string
	PinataURL      string
}

// Load reads configuration from the environment first, falling back to the
// settings table for values operators manage in the database.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = data.GetSetting("jwt_secret")
	}
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	rpcURL := os.Getenv("JSON_RPC_URL")
	if rpcURL == "" {
		rpcURL = data.GetSetting("json_rpc_url")
	}
	if rpcURL == "" {
		log.Fatal("JSON_RPC_URL is not set")
	}

	operatorKey := os.Getenv("OPERATOR_PRIVATE_KEY")
	if operatorKey == "" {
		log.Fatal("OPERATOR_PRIVATE_KEY is not set")
	}

	factory := os.Getenv("VENTURE_FACTORY_ADDRESS")
	if factory == "" {
		factory = data.GetSetting("venture_factory_address")
	}
	if factory == "" {
		log.Fatal("VENTURE_FACTORY_ADDRESS is not set")
	}

	usdc := os.Getenv("USDC_ADDRESS")
	if usdc == "" {
		usdc = data.GetSetting("usdc_address")
	}
	if usdc == "" {
		log.Fatal("USDC_ADDRESS is not set")
	}

	pinataKey := os.Getenv("PINATA_API_KEY")
	pinataSecret := os.Getenv("PINATA_API_SECRET")
	if pinataKey == "" || pinataSecret == "" {
		log.Fatal("PINATA_API_KEY / PINATA_API_SECRET are not set")
	}

	pinataURL := os.Getenv("PINATA_API_URL")
	if pinataURL == "" {
		pinataURL = data.GetSetting("pinata_api_url")
	}

	return Config{
		Port:           port,
		RedisURL:       redisURL,
		JWTSecret:      []byte(jwtSecret),
		RPCURL:         rpcURL,
		OperatorKey:    operatorKey,
		FactoryAddress: factory,
		USDCAddress:    usdc,
		PinataKey:      pinataKey,
		PinataSecret:   pinataSecret,
		PinataURL:      pinataURL,
	}
}
