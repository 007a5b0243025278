package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type JwtCustomClaim struct {
	UserId int `json:"userId"`
	jwt.StandardClaims
}

const defaultTokenHourLifespan = 30 * 24

var ErrJwtSecretMissing = errors.New("JWT_SECRET is not set")

// getJwtSecret falls back to a development secret outside production only.
func getJwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret != "" {
		return []byte(secret), nil
	}
	if config.IsProduction() {
		return nil, ErrJwtSecretMissing
	}
	return []byte("Ledger-Secret"), nil
}

// TokenLifespan reads JWT_EXPIRES_HOURS (default 30 days).
func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("JWT_EXPIRES_HOURS"))
	if err != nil || hours <= 0 {
		hours = defaultTokenHourLifespan
	}
	return time.Hour * time.Duration(hours)
}

func JwtGenerate(userId int) (string, error) {
	secret, err := getJwtSecret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserId: userId,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			ExpiresAt: now.Add(TokenLifespan()).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return t.SignedString(secret)
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret()
	})
}

// ParseToken validates the token and returns its claims, or ErrUnauthorized.
func ParseToken(token string) (*JwtCustomClaim, error) {
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || claims.UserId <= 0 {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
