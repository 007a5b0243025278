package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("REPORT_CACHE_TTL_SECONDS"))
	if err != nil || lifespan <= 0 {
		lifespan = 120
	}
	return time.Duration(lifespan) * time.Second
}

func reportKeySet(userId int) string {
	return "ReportKeys:" + fmt.Sprint(userId)
}

func reportGenerationKey(userId int) string {
	return "ReportGen:" + fmt.Sprint(userId)
}

// ReportCacheGeneration returns the user's current cache generation ("0" when
// nothing was ever invalidated). Read it before computing a report and key the
// result with it: a ledger change bumps the generation, so a report computed
// from older data is stored under a key nobody reads anymore.
func ReportCacheGeneration(userId int) (string, error) {
	gen, ok, err := config.GetRedisValue(reportGenerationKey(userId))
	if err != nil {
		return "", err
	}
	if !ok {
		return "0", nil
	}
	return gen, nil
}

// ReportCacheKey builds "Report:<userId>:g<generation>:<name>:<parts...>".
func ReportCacheKey(userId int, generation string, name string, parts ...string) string {
	key := "Report:" + fmt.Sprint(userId) + ":g" + generation + ":" + name
	if len(parts) > 0 {
		key += ":" + strings.Join(parts, ":")
	}
	return key
}

// StoreReportCache caches obj and tracks the key under the user's key set
// so a ledger change can drop every cached report at once.
func StoreReportCache(userId int, key string, obj any) error {
	if err := config.SetRedisObject(key, obj, GetCacheLifespan()); err != nil {
		return err
	}
	return config.AddRedisSet(reportKeySet(userId), key)
}

func GetReportCache(key string, dest any) (bool, error) {
	return config.GetRedisObject(key, dest)
}

// InvalidateReportCache moves userId to a new cache generation and removes
// every cached report of the old ones.
func InvalidateReportCache(userId int) error {
	if _, err := config.IncrRedisKey(reportGenerationKey(userId)); err != nil {
		return err
	}
	setKey := reportKeySet(userId)
	keys, err := config.GetRedisSetMembers(setKey)
	if err != nil {
		return err
	}
	keys = append(keys, setKey)
	return config.RemoveRedisKey(keys...)
}
