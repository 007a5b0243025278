package models

import (
	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

// invalidateReportCache runs after a ledger commit. A failure only leaves
// stale reports until the cache TTL, so it is logged and swallowed.
func invalidateReportCache(userId int) {
	if err := utils.InvalidateReportCache(userId); err != nil {
		config.LogError(config.GetLogger(), "reportCache.go", "invalidateReportCache", "Error invalidating report cache", userId, err)
	}
}
