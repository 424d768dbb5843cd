package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"

	"legend/api/types"
)

const DefaultTokenMint = "G2jXu2puUqyQsXmcL7SammGfkHX734wLZPce7yDepump"

func Load() (*types.Config, error) {
	rpcEndpoint := getEnv("RPC_ENDPOINT", "")
	if rpcEndpoint == "" {
		return nil, fmt.Errorf("%w: RPC_ENDPOINT environment variable is required", types.ErrInvalidConfig)
	}

	tokenMint := getEnv("TOKEN_MINT", DefaultTokenMint)
	if _, err := solana.PublicKeyFromBase58(tokenMint); err != nil {
		return nil, fmt.Errorf("%w: TOKEN_MINT %q is not a valid public key", types.ErrInvalidConfig, tokenMint)
	}

	cfg := &types.Config{
		Port:          getEnv("API_PORT", "3000"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "legend"),
		RedisURI:      getEnv("REDIS_URI", "localhost:6379"),
		RPCEndpoint:   rpcEndpoint,
		TokenMint:     tokenMint,
		WalletsFile:   getEnv("WALLETS_FILE", "wallets.json"),
		ReportPath:    getEnv("REPORT_PATH", "/"),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ScanInterval, err = getDuration("SCAN_INTERVAL", 80*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScanThrottle, err = getDuration("SCAN_THROTTLE", 400*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ScanLockTTL, err = getDuration("SCAN_LOCK_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 60); err != nil {
		return nil, err
	}

	if cfg.ScanInterval <= 0 {
		return nil, fmt.Errorf("%w: SCAN_INTERVAL must be positive", types.ErrInvalidConfig)
	}
	if cfg.ReportPath == "" || cfg.ReportPath[0] != '/' {
		return nil, fmt.Errorf("%w: REPORT_PATH must start with /", types.ErrInvalidConfig)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", types.ErrInvalidConfig, key, raw)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive integer", types.ErrInvalidConfig, key, raw)
	}
	return n, nil
}
