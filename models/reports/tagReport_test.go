package reports

import (
	"testing"

	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"github.com/stretchr/testify/assert"
)

func tagNames(tags []*TagSummary) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return names
}

func sampleTags() []*TagSummary {
	return []*TagSummary{
		{Tag: "Food", Count: 2, TotalAmount: models.MoneyFromString("50")},
		{Tag: "Rent", Count: 1, TotalAmount: models.MoneyFromString("400")},
		{Tag: "Books", Count: 2, TotalAmount: models.MoneyFromString("50")},
	}
}

func TestSortTagSummariesByCount(t *testing.T) {
	tags := sampleTags()
	SortTagSummaries(tags, models.TagSortFieldCount)
	assert.Equal(t, []string{"Books", "Food", "Rent"}, tagNames(tags))
}

func TestSortTagSummariesByAmount(t *testing.T) {
	tags := sampleTags()
	SortTagSummaries(tags, models.TagSortFieldAmount)
	assert.Equal(t, []string{"Rent", "Books", "Food"}, tagNames(tags))
}

func TestSortTagSummariesUnknownFieldUsesCount(t *testing.T) {
	tags := sampleTags()
	SortTagSummaries(tags, models.ParseTagSortField("popularity"))
	assert.Equal(t, []string{"Books", "Food", "Rent"}, tagNames(tags))
}

func TestSortTagSummariesEmpty(t *testing.T) {
	tags := []*TagSummary{}
	SortTagSummaries(tags, models.TagSortFieldAmount)
	assert.Empty(t, tags)
}
