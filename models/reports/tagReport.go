package reports

import (
	"context"
	"sort"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type TagSummary struct {
	Tag         string       `json:"tag"`
	Count       int64        `json:"count"`
	TotalAmount models.Money `json:"totalAmount"`
}

// SortTagSummaries orders descending by count (default) or total amount,
// then by tag ascending.
func SortTagSummaries(tags []*TagSummary, field models.TagSortField) {
	sort.SliceStable(tags, func(i, j int) bool {
		a, b := tags[i], tags[j]
		if field == models.TagSortFieldAmount {
			if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
				return c > 0
			}
		} else if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Tag < b.Tag
	})
}

// GetExpenseTags groups the caller's expenses by tag.
func GetExpenseTags(ctx context.Context, sortBy string) ([]*TagSummary, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	field := models.ParseTagSortField(sortBy)

	return cachedReport(ctx, userId, "expense_tags", func() ([]*TagSummary, error) {
		query := `
			SELECT
				tag,
				COUNT(*) AS count,
				SUM(amount) AS total_amount
			FROM expenses
			WHERE user_id = ?
			GROUP BY tag
		`
		tags := make([]*TagSummary, 0)
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(query, userId).Scan(&tags).Error; err != nil {
			return nil, err
		}
		SortTagSummaries(tags, field)
		return tags, nil
	}, string(field))
}
