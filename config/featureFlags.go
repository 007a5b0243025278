package config

import (
	"os"
	"strconv"
	"strings"
)

// AllowFullBalanceSpend lets an expense consume the entire available balance.
// Off by default: an expense must leave a strictly positive balance.
//
// Set via env:
// - ALLOW_FULL_BALANCE_SPEND=true
func AllowFullBalanceSpend() bool {
	return boolFromEnv("ALLOW_FULL_BALANCE_SPEND")
}

// IsProduction reports GO_ENV=production.
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

// LedgerLockTTLSeconds bounds how long one user's ledger append may hold the redis lock.
// Env: LEDGER_LOCK_TTL_SECONDS (default 30)
func LedgerLockTTLSeconds() int {
	return intFromEnv("LEDGER_LOCK_TTL_SECONDS", 30)
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
