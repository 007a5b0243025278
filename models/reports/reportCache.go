package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"user_id":        userId,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

// cachedReport serves name from the per-user report cache when enabled,
// otherwise runs load and stores its result. Cache failures fall through to load.
// The key carries the generation read before load, so a result computed
// across a ledger change is never served afterwards.
func cachedReport[T any](ctx context.Context, userId int, name string, load func() (T, error), parts ...string) (T, error) {
	start := time.Now()
	defer logSlowReport(ctx, name, start, map[string]any{"parts": parts})

	if !reportCacheEnabled() {
		return load()
	}

	generation, err := utils.ReportCacheGeneration(userId)
	if err != nil {
		config.LogError(config.GetLogger(), "reportCache.go", "cachedReport", "Error reading cache generation", userId, err)
		return load()
	}
	key := utils.ReportCacheKey(userId, generation, name, parts...)
	var cached T
	if ok, err := utils.GetReportCache(key, &cached); err == nil && ok {
		return cached, nil
	}

	result, err := load()
	if err != nil {
		return result, err
	}
	if err := utils.StoreReportCache(userId, key, result); err != nil {
		config.LogError(config.GetLogger(), "reportCache.go", "cachedReport", "Error caching report", key, err)
	}
	return result, nil
}
