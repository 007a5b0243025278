package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const genericErrorMessage = "An error occurred. Please try again."

// StatusForError maps a domain error to its HTTP status and client message.
// Unknown errors get the generic message; their detail stays in the logs.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, utils.ErrInvalidCredentials),
		errors.Is(err, utils.ErrUserExists),
		errors.Is(err, utils.ErrInsufficientFunds),
		errors.Is(err, utils.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadRequest, genericErrorMessage
	}
}

func isKnownError(err error) bool {
	for _, known := range []error{
		utils.ErrUnauthorized, utils.ErrNotFound, utils.ErrInvalidCredentials,
		utils.ErrUserExists, utils.ErrInsufficientFunds, utils.ErrInvalidRequest,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

func respondError(c *gin.Context, funcName string, err error) {
	status, message := StatusForError(err)
	if !isKnownError(err) {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "handlers", funcName, "Request failed", cid, err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"message": message})
}

// respondBindError answers a failed body bind; validator failures carry a field map.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": utils.ErrInvalidRequest.Error(),
			"errors":  utils.ProcessValidationErrors(err),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": utils.ErrInvalidRequest.Error()})
}

// bindOptionalJSON binds the body when there is one; an empty body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// bindListQuery reads page/size from the query string and the filter from the body.
func bindListQuery(c *gin.Context) (models.ListQuery, error) {
	var filter models.ListFilter
	if err := bindOptionalJSON(c, &filter); err != nil {
		return models.ListQuery{}, err
	}
	query := models.ListQuery{
		Page:       queryInt(c, "page"),
		Size:       queryInt(c, "size"),
		ListFilter: filter,
	}
	return query.Normalize(), nil
}
