package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type Expense struct {
	ID          int       `gorm:"primary_key" json:"_id"`
	UserId      int       `gorm:"index:idx_expenses_user_created,priority:1;index:idx_expenses_user_tag,priority:1;not null" json:"user"`
	Tag         string    `gorm:"size:255;not null;index:idx_expenses_user_tag,priority:2" json:"tag"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Amount      Money     `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_expenses_user_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewExpense struct {
	Tag         string `json:"tag" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      Money  `json:"amount"`
}

func (input *NewExpense) validate() error {
	input.Tag = strings.TrimSpace(input.Tag)
	input.Description = strings.TrimSpace(input.Description)
	if input.Tag == "" {
		return fmt.Errorf("%w: tag is required", utils.ErrInvalidRequest)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description is required", utils.ErrInvalidRequest)
	}
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", utils.ErrInvalidRequest)
	}
	input.Amount = input.Amount.Round2()
	return nil
}

// CreateExpense stores the expense and its balance snapshot in one transaction.
// Nothing is stored when the balance cannot cover the amount.
func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	release, err := utils.UserLedgerLock(ctx, userId, "expense.go", "CreateExpense")
	if err != nil {
		return nil, err
	}
	defer release()

	expense := Expense{
		UserId:      userId,
		Tag:         input.Tag,
		Description: input.Description,
		Amount:      input.Amount,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&expense).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := appendSnapshot(ctx, tx, LedgerEntry{
		Kind:   LedgerEntryKindExpense,
		UserId: userId,
		Id:     expense.ID,
		Amount: expense.Amount,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateReportCache(userId)
	return &expense, nil
}

var expenseSortColumns = sortColumns{
	"createdAt":   "created_at",
	"amount":      "amount",
	"tag":         "tag",
	"description": "description",
	"id":          "id",
	"_id":         "id",
}

func ListExpenses(ctx context.Context, query ListQuery) (*ListResult[Expense], error) {
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
	dbCtx := db.WithContext(ctx).Model(&Expense{}).Where("user_id = ?", userId)
	dbCtx = applyDateRange(dbCtx, start, end)
	if query.Q != "" {
		like := "%" + utils.EscapeLike(query.Q) + "%"
		dbCtx = dbCtx.Where("(LOWER(tag) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", like, like)
	}

	expenses, metadata, err := paginate[Expense](dbCtx, query, expenseSortColumns)
	if err != nil {
		return nil, err
	}
	return &ListResult[Expense]{Data: expenses, Metadata: metadata}, nil
}
