package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
)

// OperatorKey is the gin context key for the authenticated operator.
const OperatorKey = "operator"

// ErrOperatorAuthDisabled is returned when no operator secret is configured.
var ErrOperatorAuthDisabled = errors.New("operator authentication is not configured")

// OperatorClaims are the claims of an operator access token.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// OperatorAuth validates HS256 operator tokens.
type OperatorAuth struct {
	secret []byte
	issuer string
}

// NewOperatorAuth creates an operator token validator.
func NewOperatorAuth(secret, issuer string) *OperatorAuth {
	return &OperatorAuth{secret: []byte(secret), issuer: issuer}
}

// Validate parses and verifies a token string.
func (a *OperatorAuth) Validate(tokenString string) (*OperatorClaims, error) {
	if len(a.secret) == 0 {
		return nil, ErrOperatorAuthDisabled
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid operator token: %w", err)
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid operator token claims")
	}
	return claims, nil
}

// Require returns a middleware that rejects requests without a valid operator token.
func (a *OperatorAuth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			abortWithError(c, apperrors.Unauthorized("Operator token required", nil))
			return
		}

		claims, err := a.Validate(tokenString)
		if err != nil {
			abortWithError(c, apperrors.Unauthorized("Invalid operator token", err))
			return
		}

		c.Set(OperatorKey, claims.Subject)
		c.Next()
	}
}

// GetOperator returns the authenticated operator from context.
func GetOperator(c *gin.Context) string {
	return c.GetString(OperatorKey)
}
