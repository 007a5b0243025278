package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("bitbucket.org/mmdatafocus/ledger_backend/models")

// Balance is one immutable ledger snapshot. Exactly one of IncomeId and
// ExpenseId is set, except for an opening snapshot where both are nil.
type Balance struct {
	ID        int       `gorm:"primary_key" json:"_id"`
	UserId    int       `gorm:"index:idx_balances_user_created,priority:1;not null" json:"user"`
	Start     Money     `gorm:"type:decimal(20,2);not null" json:"start"`
	In        Money     `gorm:"column:amount_in;type:decimal(20,2);not null" json:"in"`
	Out       Money     `gorm:"column:amount_out;type:decimal(20,2);not null" json:"out"`
	End       Money     `gorm:"type:decimal(20,2);not null" json:"end"`
	IncomeId  *int      `gorm:"index" json:"-"`
	ExpenseId *int      `gorm:"index" json:"-"`
	Income    *Income   `gorm:"foreignKey:IncomeId" json:"-"`
	Expense   *Expense  `gorm:"foreignKey:ExpenseId" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_balances_user_created,priority:2" json:"createdAt"`
}

// BalanceResponse is a snapshot with its originating transaction resolved:
// Income carries the income source, Expense the expense tag.
type BalanceResponse struct {
	ID        int       `json:"_id"`
	UserId    int       `json:"user"`
	Start     Money     `json:"start"`
	In        Money     `json:"in"`
	Out       Money     `json:"out"`
	End       Money     `json:"end"`
	Income    *string   `json:"income"`
	Expense   *string   `json:"expense"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *Balance) Response() *BalanceResponse {
	resp := &BalanceResponse{
		ID:        b.ID,
		UserId:    b.UserId,
		Start:     b.Start,
		In:        b.In,
		Out:       b.Out,
		End:       b.End,
		CreatedAt: b.CreatedAt,
	}
	if b.Income != nil {
		source := b.Income.Source
		resp.Income = &source
	}
	if b.Expense != nil {
		tag := b.Expense.Tag
		resp.Expense = &tag
	}
	return resp
}

// LedgerEntry is the transaction a snapshot is derived from.
type LedgerEntry struct {
	Kind   LedgerEntryKind
	UserId int
	Id     int
	Amount Money
}

// NextSnapshot derives the snapshot that follows prior after applying entry.
// prior is nil when the user has no snapshot yet.
//
// An expense needs a prior snapshot whose end strictly exceeds the amount;
// ALLOW_FULL_BALANCE_SPEND relaxes that to end >= amount.
func NextSnapshot(prior *Balance, entry LedgerEntry) (*Balance, error) {
	if !entry.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown ledger entry kind %q", utils.ErrInvalidRequest, entry.Kind)
	}
	start := ZeroMoney
	if prior != nil {
		start = prior.End
	}

	next := &Balance{
		UserId: entry.UserId,
		Start:  start,
		In:     ZeroMoney,
		Out:    ZeroMoney,
	}

	switch entry.Kind {
	case LedgerEntryKindIncome:
		id := entry.Id
		next.In = entry.Amount
		next.IncomeId = &id
	case LedgerEntryKindExpense:
		if prior == nil {
			return nil, fmt.Errorf("%w: no balance recorded yet", utils.ErrInsufficientFunds)
		}
		if !canSpend(prior.End, entry.Amount) {
			return nil, utils.ErrInsufficientFunds
		}
		id := entry.Id
		next.Out = entry.Amount
		next.ExpenseId = &id
	case LedgerEntryKindOpening:
		if prior != nil {
			return nil, fmt.Errorf("%w: ledger already has a balance", utils.ErrInvalidRequest)
		}
		next.In = entry.Amount
	}

	next.End = next.Start.Add(next.In).Sub(next.Out).Round2()
	return next, nil
}

func canSpend(available Money, amount Money) bool {
	if config.AllowFullBalanceSpend() {
		return available.GreaterThanOrEqual(amount)
	}
	return available.GreaterThan(amount)
}

// appendSnapshot locks the user's ledger, reads the latest snapshot and
// inserts the next one, all inside tx.
func appendSnapshot(ctx context.Context, tx *gorm.DB, entry LedgerEntry) (*Balance, error) {
	ctx, span := tracer.Start(ctx, "ledger.appendSnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user_id", entry.UserId),
		attribute.String("entry_kind", string(entry.Kind)),
	)

	tx = tx.WithContext(ctx)
	if err := lockUserLedger(tx, entry.UserId); err != nil {
		return nil, err
	}
	prior, err := latestBalance(tx.Clauses(clause.Locking{Strength: "UPDATE"}), entry.UserId)
	if err != nil {
		return nil, err
	}
	next, err := NextSnapshot(prior, entry)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(next).Error; err != nil {
		return nil, err
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"user_id":        entry.UserId,
		"balance_id":     next.ID,
		"entry_kind":     entry.Kind,
		"correlation_id": correlationId,
	}).Info("ledger snapshot appended")
	return next, nil
}

// GetLatestBalance returns the caller's newest snapshot or ErrNotFound.
func GetLatestBalance(ctx context.Context) (*Balance, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	balance, err := latestBalance(db.WithContext(ctx), userId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, utils.ErrNotFound
	}
	return balance, nil
}

// SeedOpeningBalance records a starting balance for a user without any snapshot.
// Both transaction references stay nil.
func SeedOpeningBalance(ctx context.Context, userId int, amount Money) (*Balance, error) {
	if amount.Cmp(ZeroMoney) < 0 {
		return nil, fmt.Errorf("%w: opening balance must not be negative", utils.ErrInvalidRequest)
	}
	ctx = utils.SetUserIdInContext(ctx, userId)
	release, err := utils.UserLedgerLock(ctx, userId, "balance.go", "SeedOpeningBalance")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	balance, err := appendSnapshot(ctx, tx, LedgerEntry{
		Kind:   LedgerEntryKindOpening,
		UserId: userId,
		Amount: amount.Round2(),
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	invalidateReportCache(userId)
	return balance, nil
}

var balanceSortColumns = sortColumns{
	"createdAt": "created_at",
	"start":     "start",
	"in":        "amount_in",
	"out":       "amount_out",
	"end":       "end",
	"id":        "id",
	"_id":       "id",
}

// ListBalances pages through the caller's snapshots. Text search matches the
// income source or expense tag that produced a snapshot.
func ListBalances(ctx context.Context, query ListQuery) (*ListResult[BalanceResponse], error) {
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
	dbCtx := db.WithContext(ctx).Model(&Balance{}).Where("user_id = ?", userId)
	dbCtx = applyDateRange(dbCtx, start, end)

	if query.Q != "" {
		like := "%" + utils.EscapeLike(query.Q) + "%"
		var incomeIds, expenseIds []int
		if err := db.WithContext(ctx).Model(&Income{}).
			Where("user_id = ? AND LOWER(source) LIKE LOWER(?)", userId, like).
			Pluck("id", &incomeIds).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).Model(&Expense{}).
			Where("user_id = ? AND LOWER(tag) LIKE LOWER(?)", userId, like).
			Pluck("id", &expenseIds).Error; err != nil {
			return nil, err
		}
		if len(incomeIds) == 0 && len(expenseIds) == 0 {
			return emptyListResult[BalanceResponse](query), nil
		}
		switch {
		case len(incomeIds) == 0:
			dbCtx = dbCtx.Where("expense_id IN ?", expenseIds)
		case len(expenseIds) == 0:
			dbCtx = dbCtx.Where("income_id IN ?", incomeIds)
		default:
			dbCtx = dbCtx.Where("(income_id IN ? OR expense_id IN ?)", incomeIds, expenseIds)
		}
	}

	balances, metadata, err := paginate[Balance](dbCtx, query, balanceSortColumns, func(d *gorm.DB) *gorm.DB {
		return d.Preload("Income", func(p *gorm.DB) *gorm.DB { return p.Select("id", "user_id", "source") }).
			Preload("Expense", func(p *gorm.DB) *gorm.DB { return p.Select("id", "user_id", "tag") })
	})
	if err != nil {
		return nil, err
	}

	data := make([]*BalanceResponse, 0, len(balances))
	for _, b := range balances {
		data = append(data, b.Response())
	}
	return &ListResult[BalanceResponse]{Data: data, Metadata: metadata}, nil
}

// ListAllBalances returns every snapshot of userId in ledger order.
func ListAllBalances(ctx context.Context, tx *gorm.DB, userId int) ([]*Balance, error) {
	var balances []*Balance
	err := tx.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at ASC").
		Order("id ASC").
		Find(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}
