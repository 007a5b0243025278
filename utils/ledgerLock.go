package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// UserLedgerLock serializes ledger appends for one user across instances.
// The returned release func must always be called. When redis is not ready the
// lock degrades to a no-op; the users row lock taken inside the ledger
// transaction still serializes the append.
func UserLedgerLock(ctx context.Context, userId int, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	noop := func() {}
	if locker == nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": functionName,
			"user_id":  userId,
		}).Warn("redis lock not ready; relying on database lock")
		return noop, nil
	}

	ttl := time.Duration(config.LedgerLockTTLSeconds()) * time.Second
	lockKey := fmt.Sprintf("ledger:%d", userId)
	lock, err := locker.Obtain(ctx, lockKey, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(ttl/(50*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, moduleName, functionName, "Could not obtain ledger lock", userId, err)
		return noop, errors.New("ledger is busy, please try again")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining ledger lock", userId, err)
		return noop, err
	}

	return func() {
		// release on a fresh context: the request may already be cancelled
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			config.LogError(logger, moduleName, functionName, "Error releasing ledger lock", userId, releaseErr)
		}
	}, nil
}
