package handlers

import (
	"net/http"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/middlewares"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

type userResponse struct {
	ID       int    `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{ID: user.ID, Username: user.Username, Email: user.Email}
}

// COOKIE_SAMESITE: strict (default), lax or none.
func cookieSameSite() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COOKIE_SAMESITE"))) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func setTokenCookie(c *gin.Context, userId int) error {
	token, err := utils.JwtGenerate(userId)
	if err != nil {
		return err
	}
	c.SetSameSite(cookieSameSite())
	c.SetCookie(middlewares.TokenCookieName, token, int(utils.TokenLifespan().Seconds()), "/", "", config.IsProduction(), true)
	return nil
}

func clearTokenCookie(c *gin.Context) {
	c.SetSameSite(cookieSameSite())
	c.SetCookie(middlewares.TokenCookieName, "", -1, "/", "", config.IsProduction(), true)
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.RegisterUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "registerHandler", err)
			return
		}
		if err := setTokenCookie(c, user.ID); err != nil {
			respondError(c, "registerHandler", err)
			return
		}
		c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.Login(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "loginHandler", err)
			return
		}
		if err := setTokenCookie(c, user.ID); err != nil {
			respondError(c, "loginHandler", err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// logoutHandler works with or without a valid session.
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if token := middlewares.TokenFromRequest(c); token != "" {
			ctx = utils.SetTokenInContext(ctx, token)
		}
		if err := models.Logout(ctx); err != nil {
			config.LogError(config.GetLogger(), "userHandler.go", "logoutHandler", "Revoking token", nil, err)
		}
		clearTokenCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func getProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := models.GetUserProfile(c.Request.Context())
		if err != nil {
			respondError(c, "getProfileHandler", err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

func updateProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.UpdateUserProfile(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "updateProfileHandler", err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
