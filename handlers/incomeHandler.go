package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func createIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewIncome
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		income, err := models.CreateIncome(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createIncomeHandler", err)
			return
		}
		c.JSON(http.StatusCreated, income)
	}
}

func listIncomesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := bindListQuery(c)
		if err != nil {
			respondBindError(c, err)
			return
		}
		result, err := models.ListIncomes(c.Request.Context(), query)
		if err != nil {
			respondError(c, "listIncomesHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func totalIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := reports.GetTotalIncome(c.Request.Context())
		if err != nil {
			respondError(c, "totalIncomeHandler", err)
			return
		}
		c.JSON(http.StatusOK, total)
	}
}

func monthlyIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.DateRange
		if err := bindOptionalJSON(c, &input); err != nil {
			respondBindError(c, err)
			return
		}
		data, err := reports.GetMonthlyIncome(c.Request.Context(), input)
		if err != nil {
			respondError(c, "monthlyIncomeHandler", err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}
