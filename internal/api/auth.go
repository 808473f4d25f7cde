package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"seniorkiosk/internal/config"
)

const deviceClaimsKey = "device_claims"

// IssueDeviceToken signs a token that lets a kiosk front end call the API
func IssueDeviceToken(cfg config.AuthConfig, deviceID string, now time.Time) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("auth secret is not configured")
	}
	if deviceID == "" {
		return "", errors.New("device id is required")
	}

	claims := jwt.StandardClaims{
		Subject:  deviceID,
		Issuer:   cfg.Issuer,
		IssuedAt: now.Unix(),
	}
	if cfg.TokenTTL > 0 {
		claims.ExpiresAt = now.Add(cfg.TokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parseDeviceToken(cfg config.AuthConfig, tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, errors.New("unexpected token issuer")
	}
	return claims, nil
}

// AuthMiddleware handles JWT authentication. Browsers cannot set headers on
// websocket upgrades, so a token query parameter is accepted as well.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := parseDeviceToken(cfg, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(deviceClaimsKey, claims)
		c.Next()
	}
}
