package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"_id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	plainPassword string `gorm:"-"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput keeps the stored value for every omitted field.
type UpdateProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}

// SetPassword marks a new plain password; it is hashed on save.
func (user *User) SetPassword(plain string) {
	user.plainPassword = plain
}

func (user *User) BeforeSave(tx *gorm.DB) error {
	if user.plainPassword == "" {
		return nil
	}
	hashed, err := utils.HashPassword(user.plainPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.plainPassword = ""
	return nil
}

func sanitizeUsername(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// ensureUserAvailable fails with ErrUserExists when another user already holds
// username or email. exceptId = 0 checks every user.
func ensureUserAvailable(ctx context.Context, username string, email string, exceptId int) error {
	if err := utils.ValidateUnique[User](ctx, "username", username, exceptId); err != nil {
		if strings.HasPrefix(err.Error(), "duplicate") {
			return utils.ErrUserExists
		}
		return err
	}
	if err := utils.ValidateUnique[User](ctx, "email", email, exceptId); err != nil {
		if strings.HasPrefix(err.Error(), "duplicate") {
			return utils.ErrUserExists
		}
		return err
	}
	return nil
}

func RegisterUser(ctx context.Context, input *NewUser) (*User, error) {
	username := sanitizeUsername(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", utils.ErrInvalidRequest)
	}
	if err := ensureUserAvailable(ctx, username, email, 0); err != nil {
		return nil, err
	}

	user := User{
		Username: username,
		Email:    email,
	}
	user.SetPassword(input.Password)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, input *LoginInput) (*User, error) {
	var user User
	db := config.GetDB()
	err := db.WithContext(ctx).Where("username = ?", sanitizeUsername(input.Username)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, utils.ErrInvalidCredentials
	}
	return &user, nil
}

func revokedTokenKey(jti string) string {
	return "RevokedToken:" + jti
}

// Logout deny-lists the current token until it would have expired anyway.
func Logout(ctx context.Context) error {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return nil
	}
	claims, err := utils.ParseToken(token)
	if err != nil || claims.Id == "" {
		return nil
	}
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	return config.SetRedisValue(revokedTokenKey(claims.Id), "1", ttl)
}

func IsTokenRevoked(jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, exists, err := config.GetRedisValue(revokedTokenKey(jti))
	return exists, err
}

func GetUserProfile(ctx context.Context) (*User, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	var user User
	db := config.GetDB()
	err = db.WithContext(ctx).Where("id = ?", userId).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserProfile(ctx context.Context, input *UpdateProfileInput) (*User, error) {
	user, err := GetUserProfile(ctx)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && sanitizeUsername(*input.Username) != "" {
		user.Username = sanitizeUsername(*input.Username)
	}
	if input.Email != nil && normalizeEmail(*input.Email) != "" {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Password != nil && *input.Password != "" {
		user.SetPassword(*input.Password)
	}
	if err := ensureUserAvailable(ctx, user.Username, user.Email, user.ID); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}
