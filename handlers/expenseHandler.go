package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func createExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewExpense
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createExpenseHandler", err)
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

func listExpensesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := bindListQuery(c)
		if err != nil {
			respondBindError(c, err)
			return
		}
		result, err := models.ListExpenses(c.Request.Context(), query)
		if err != nil {
			respondError(c, "listExpensesHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func totalExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := reports.GetTotalExpense(c.Request.Context())
		if err != nil {
			respondError(c, "totalExpenseHandler", err)
			return
		}
		c.JSON(http.StatusOK, total)
	}
}

func monthlyExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.DateRange
		if err := bindOptionalJSON(c, &input); err != nil {
			respondBindError(c, err)
			return
		}
		data, err := reports.GetMonthlyExpense(c.Request.Context(), input)
		if err != nil {
			respondError(c, "monthlyExpenseHandler", err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

// expenseTagsHandler accepts ?sortBy=amount; anything else sorts by count.
func expenseTagsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := reports.GetExpenseTags(c.Request.Context(), c.Query("sortBy"))
		if err != nil {
			respondError(c, "expenseTagsHandler", err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}
