package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/pkg/response"
)

// UserKey is the gin context key holding the authenticated subject
const UserKey = "user"

// AdminRole is the role required on admin routes
const AdminRole = "admin"

// Claims are the JWT claims accepted by the API
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject with the given role
func IssueToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates an HS256 token and returns its claims
func ParseToken(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin rejects requests without a valid admin bearer token
func RequireAdmin(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		if len(key) == 0 {
			response.AbortWithError(c, http.StatusServiceUnavailable, "Admin API is disabled")
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := ParseToken(key, token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			logger.Debugw("Rejected token", "error", err, "client_ip", c.ClientIP())
			response.AbortWithError(c, http.StatusUnauthorized, msg)
			return
		}

		if claims.Role != AdminRole {
			response.AbortWithError(c, http.StatusForbidden, "Admin role required")
			return
		}

		c.Set(UserKey, claims.Subject)
		c.Next()
	}
}
