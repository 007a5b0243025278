package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type Income struct {
	ID        int       `gorm:"primary_key" json:"_id"`
	UserId    int       `gorm:"index:idx_incomes_user_created,priority:1;not null" json:"user"`
	Source    string    `gorm:"size:255;not null" json:"source"`
	Amount    Money     `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_incomes_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewIncome struct {
	Source string `json:"source" binding:"required"`
	Amount Money  `json:"amount"`
}

func (input *NewIncome) validate() error {
	input.Source = strings.TrimSpace(input.Source)
	if input.Source == "" {
		return fmt.Errorf("%w: source is required", utils.ErrInvalidRequest)
	}
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", utils.ErrInvalidRequest)
	}
	input.Amount = input.Amount.Round2()
	return nil
}

// CreateIncome stores the income and its balance snapshot in one transaction.
func CreateIncome(ctx context.Context, input *NewIncome) (*Income, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	release, err := utils.UserLedgerLock(ctx, userId, "income.go", "CreateIncome")
	if err != nil {
		return nil, err
	}
	defer release()

	income := Income{
		UserId: userId,
		Source: input.Source,
		Amount: input.Amount,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&income).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := appendSnapshot(ctx, tx, LedgerEntry{
		Kind:   LedgerEntryKindIncome,
		UserId: userId,
		Id:     income.ID,
		Amount: income.Amount,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateReportCache(userId)
	return &income, nil
}

var incomeSortColumns = sortColumns{
	"createdAt": "created_at",
	"amount":    "amount",
	"source":    "source",
	"id":        "id",
	"_id":       "id",
}

func ListIncomes(ctx context.Context, query ListQuery) (*ListResult[Income], error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	query = query.Normalize()
	start, end, err := query.DateBounds()
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Income{}).Where("user_id = ?", userId)
	dbCtx = applyDateRange(dbCtx, start, end)
	if query.Q != "" {
		dbCtx = dbCtx.Where("LOWER(source) LIKE LOWER(?)", "%"+utils.EscapeLike(query.Q)+"%")
	}

	incomes, metadata, err := paginate[Income](dbCtx, query, incomeSortColumns)
	if err != nil {
		return nil, err
	}
	return &ListResult[Income]{Data: incomes, Metadata: metadata}, nil
}
