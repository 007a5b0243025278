package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/models/reports"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"bitbucket.org/mmdatafocus/ledger_backend/workflow"
	"github.com/gin-gonic/gin"
)

func listBalancesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := bindListQuery(c)
		if err != nil {
			respondBindError(c, err)
			return
		}
		result, err := models.ListBalances(c.Request.Context(), query)
		if err != nil {
			respondError(c, "listBalancesHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func totalBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := reports.GetTotalBalance(c.Request.Context())
		if err != nil {
			respondError(c, "totalBalanceHandler", err)
			return
		}
		c.JSON(http.StatusOK, total)
	}
}

func monthlyBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.DateRange
		if err := bindOptionalJSON(c, &input); err != nil {
			respondBindError(c, err)
			return
		}
		data, err := reports.GetMonthlyBalance(c.Request.Context(), input)
		if err != nil {
			respondError(c, "monthlyBalanceHandler", err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func exportMonthlyBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.DateRange
		if err := bindOptionalJSON(c, &input); err != nil {
			respondBindError(c, err)
			return
		}
		f, err := reports.ExportMonthlyBalance(c.Request.Context(), input)
		if err != nil {
			respondError(c, "exportMonthlyBalanceHandler", err)
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=monthly-balance.xlsx")
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "balanceHandler.go", "exportMonthlyBalanceHandler", "Writing workbook", nil, err)
		}
	}
}

func auditLedgerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, err := utils.RequireUserId(ctx)
		if err != nil {
			respondError(c, "auditLedgerHandler", err)
			return
		}
		result, err := workflow.AuditLedger(ctx, config.GetDB(), config.GetLogger(), userId, false)
		if err != nil {
			respondError(c, "auditLedgerHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
