package config

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/ledger_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// UserGuardPlugin scopes queries/updates/deletes to the request's user_id
// whenever the model carries a user_id column.
//
// NOTE:
// - Raw SQL is not covered. Raw queries must filter on user_id themselves.
// - Internal tooling bypasses the guard explicitly via appctx.ContextKeySkipUserScope.
type UserGuardPlugin struct{}

func NewUserGuardPlugin() *UserGuardPlugin { return &UserGuardPlugin{} }

func (p *UserGuardPlugin) Name() string { return "user_guard" }

func (p *UserGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("user_guard:query", userGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("user_guard:row", userGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("user_guard:update", userGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("user_guard:delete", userGuardCallback); err != nil {
		return err
	}
	return nil
}

func userGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if skip, ok := appctx.GetBool(ctx, appctx.ContextKeySkipUserScope); ok && skip {
		return
	}
	userId := userIdFromContext(ctx)
	if userId == 0 {
		return
	}
	if db.Statement.Schema == nil {
		return
	}
	if !schemaHasUserId(db.Statement.Schema.Fields) {
		return
	}
	if whereHasUserId(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "user_id"},
				Value:  userId,
			},
		},
	})
}

func userIdFromContext(ctx context.Context) int {
	v, _ := appctx.GetInt(ctx, appctx.ContextKeyUserId)
	return v
}

func schemaHasUserId(fields []*schema.Field) bool {
	for _, f := range fields {
		if strings.EqualFold(f.DBName, "user_id") {
			return true
		}
	}
	return false
}

func whereHasUserId(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasUserId(e) {
			return true
		}
	}
	return false
}

func exprHasUserId(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsUserId(v.Column)
	case clause.IN:
		return colIsUserId(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasUserId(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasUserId(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "user_id")
	default:
		return false
	}
}

func colIsUserId(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "user_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "user_id")
	default:
		return false
	}
}
