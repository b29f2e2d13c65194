// Package token issues and verifies the JWT pair used by the API: a
// short-lived access token and a longer-lived refresh token, signed with
// separate secrets.
package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL is the validity window of an access token.
	AccessTokenTTL = 24 * time.Hour
	// RefreshTokenTTL is the validity window of a refresh token.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var errInvalidToken = errors.New("invalid token")

// Issuer mints and verifies the access/refresh token pair.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewIssuer constructs an Issuer. Both secrets are required.
func NewIssuer(accessSecret, refreshSecret string) (*Issuer, error) {
	if strings.TrimSpace(accessSecret) == "" {
		return nil, errors.New("access token secret is required")
	}
	if strings.TrimSpace(refreshSecret) == "" {
		return nil, errors.New("refresh token secret is required")
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// NewAccessToken signs a short-lived token identifying userID.
func (i *Issuer) NewAccessToken(userID int) (string, error) {
	return sign(userID, i.accessSecret, AccessTokenTTL)
}

// NewRefreshToken signs a long-lived token identifying userID.
func (i *Issuer) NewRefreshToken(userID int) (string, error) {
	return sign(userID, i.refreshSecret, RefreshTokenTTL)
}

// ParseAccess verifies an access token and returns the user id it names.
func (i *Issuer) ParseAccess(tokenString string) (int, error) {
	return parse(tokenString, i.accessSecret)
}

// ParseRefresh verifies a refresh token and returns the user id it names.
func (i *Issuer) ParseRefresh(tokenString string) (int, error) {
	return parse(tokenString, i.refreshSecret)
}

func sign(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenString string, secret []byte) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errInvalidToken
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errInvalidToken
	}
	return userID, nil
}
