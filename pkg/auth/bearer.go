package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskdeck/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// BearerAuth issues and validates the signed bearer tokens the web tier
// authenticates with. Expiry is enforced here; handlers only ever see a
// resolved user id.
type BearerAuth struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewBearerAuth(secret string, tokenTTL time.Duration) *BearerAuth {
	return &BearerAuth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (b *BearerAuth) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(b.secret)
}

func (b *BearerAuth) ResolveToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}

	return userID, nil
}

func (b *BearerAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		userID, err := b.ResolveToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
