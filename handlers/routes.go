package handlers

import (
	"bitbucket.org/mmdatafocus/ledger_backend/middlewares"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the ledger API on api (normally the /api group).
// List and monthly endpoints are POST because their filters travel in the body.
func RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	users.POST("", registerHandler())
	users.POST("/login", loginHandler())
	users.POST("/logout", logoutHandler())
	users.GET("/profile", middlewares.Protect(), getProfileHandler())
	users.PUT("/profile", middlewares.Protect(), updateProfileHandler())

	incomes := api.Group("/incomes", middlewares.Protect())
	incomes.POST("", createIncomeHandler())
	incomes.POST("/all", listIncomesHandler())
	incomes.GET("/total", totalIncomeHandler())
	incomes.POST("/monthly", monthlyIncomeHandler())

	expenses := api.Group("/expenses", middlewares.Protect())
	expenses.POST("", createExpenseHandler())
	expenses.POST("/all", listExpensesHandler())
	expenses.GET("/total", totalExpenseHandler())
	expenses.POST("/monthly", monthlyExpenseHandler())
	expenses.GET("/tags", expenseTagsHandler())

	balances := api.Group("/balances", middlewares.Protect())
	balances.POST("/all", listBalancesHandler())
	balances.GET("/total", totalBalanceHandler())
	balances.POST("/monthly", monthlyBalanceHandler())
	balances.POST("/export", exportMonthlyBalanceHandler())
	balances.GET("/audit", auditLedgerHandler())
}
