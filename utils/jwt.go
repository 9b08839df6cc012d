package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cabanas/config"
	"cabanas/models"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID       uint `json:"user_id"`
	TokenVersion int  `json:"token_version"`
	jwt.RegisteredClaims
}

func GenerateJWTToken(user *models.User) (string, string, error) {
	accessClaims := &Claims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(config.AppConfig.EncryptionKey))
	if err != nil {
		return "", "", err
	}

	refreshClaims := &Claims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(config.AppConfig.EncryptionKey))
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

// IssueTokens generates an access/refresh pair and records the refresh
// token so it can be revoked before its expiry.
func IssueTokens(user *models.User, userAgent, ipAddress string) (string, string, error) {
	accessToken, refreshToken, err := GenerateJWTToken(user)
	if err != nil {
		return "", "", err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func ParseJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.EncryptionKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// RefreshTokens exchanges a stored, unrevoked refresh token for a fresh
// pair. The presented token is revoked in the same step, so each refresh
// token works exactly once.
func RefreshTokens(refreshToken, userAgent, ipAddress string) (string, string, error) {
	claims, err := ParseJWTToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	var stored models.RefreshToken
	if err := config.DB.Where("token = ?", refreshToken).First(&stored).Error; err != nil {
		return "", "", errors.New("refresh token not recognized")
	}
	if stored.RevokedAt != nil {
		return "", "", errors.New("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", "", errors.New("refresh token expired")
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		return "", "", errors.New("user not found")
	}

	// Stale token version means credentials changed since issuance
	if claims.TokenVersion != user.TokenVersion {
		return "", "", errors.New("refresh token revoked")
	}

	if err := config.DB.Model(&stored).Update("revoked_at", time.Now()).Error; err != nil {
		return "", "", err
	}

	return IssueTokens(&user, userAgent, ipAddress)
}

// RevokeUserRefreshTokens invalidates every outstanding refresh token
// for the account. Called on logout and password changes.
func RevokeUserRefreshTokens(userID uint) error {
	return config.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}
