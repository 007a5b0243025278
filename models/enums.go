package models

import "strings"

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "ASC"
	SortDirectionDesc SortDirection = "DESC"
)

// ParseSortDirection treats anything but "asc" (any case) as descending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return SortDirectionAsc
	}
	return SortDirectionDesc
}

func (d SortDirection) IsDesc() bool {
	return d != SortDirectionAsc
}

type TagSortField string

const (
	TagSortFieldCount  TagSortField = "count"
	TagSortFieldAmount TagSortField = "amount"
)

func ParseTagSortField(s string) TagSortField {
	if strings.EqualFold(strings.TrimSpace(s), string(TagSortFieldAmount)) {
		return TagSortFieldAmount
	}
	return TagSortFieldCount
}

type LedgerEntryKind string

const (
	LedgerEntryKindIncome  LedgerEntryKind = "Income"
	LedgerEntryKindExpense LedgerEntryKind = "Expense"
	LedgerEntryKindOpening LedgerEntryKind = "Opening"
)

func (k LedgerEntryKind) IsValid() bool {
	switch k {
	case LedgerEntryKindIncome, LedgerEntryKindExpense, LedgerEntryKindOpening:
		return true
	}
	return false
}
