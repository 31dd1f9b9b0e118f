package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AuthSecret            string
	AccessTokenTTLMinutes int
	ManagerPIN            string
	RatesURL              string
	RatesTTLSeconds       int
	BankGatewayURL        string
	BankGatewayKey        string
	VerifyTimeoutSeconds  int
	RechargeMinCents      int64
	RechargeMaxCents      int64
	RechargeStepCents     int64
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ratesTTL, err := strconv.Atoi(getEnv("RATES_TTL_SECONDS", "300"))
	if err != nil || ratesTTL < 1 {
		ratesTTL = 300
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	verifyTimeout, err := strconv.Atoi(getEnv("VERIFY_TIMEOUT_SECONDS", "15"))
	if err != nil || verifyTimeout < 1 {
		verifyTimeout = 15
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		ManagerPIN:            strings.TrimSpace(os.Getenv("MANAGER_PIN")),
		RatesURL:              strings.TrimSpace(os.Getenv("RATES_URL")),
		RatesTTLSeconds:       ratesTTL,
		BankGatewayURL:        strings.TrimSpace(os.Getenv("BANK_GATEWAY_URL")),
		BankGatewayKey:        strings.TrimSpace(os.Getenv("BANK_GATEWAY_KEY")),
		VerifyTimeoutSeconds:  verifyTimeout,
		RechargeMinCents:      getEnvInt64("RECHARGE_MIN_CENTS", 100),
		RechargeMaxCents:      getEnvInt64("RECHARGE_MAX_CENTS", 1000000),
		RechargeStepCents:     getEnvInt64("RECHARGE_STEP_CENTS", 0),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
