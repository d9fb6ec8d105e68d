package middleware

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"tailor-gallery-backend/internal/config"
	"tailor-gallery-backend/internal/httperr"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

var (
	ErrTokenFormat    = errors.New("token must have 3 parts separated by dots")
	ErrMissingSubject = errors.New("token has no subject")
)

// ParseAccessToken verifies a Supabase access token against the project's
// HS256 JWT secret and returns its claims. The token must carry a subject.
func ParseAccessToken(secret, tokenString string) (jwt.MapClaims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrTokenFormat
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if secret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	if sub, err := claims.GetSubject(); err != nil || sub == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// AuthMiddleware accepts Supabase access tokens signed with the project's
// HS256 JWT secret and stores the admin's id and email in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing authorization header", "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httperr.Unauthorized(c, "invalid authorization header format", "")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			httperr.Unauthorized(c, "empty token", "")
			c.Abort()
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		claims, err := ParseAccessToken(cfg.SupabaseJWTSecret, tokenString)
		switch {
		case errors.Is(err, ErrTokenFormat):
			httperr.Unauthorized(c, "invalid token format", "JWT token must have 3 parts separated by dots")
			c.Abort()
			return
		case errors.Is(err, ErrMissingSubject):
			httperr.Unauthorized(c, "missing user id in token", "")
			c.Abort()
			return
		case err != nil:
			httperr.Unauthorized(c, "invalid token", tokenErrorMessage(err))
			c.Abort()
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(UserIDKey, sub)
		if email, ok := claims["email"].(string); ok {
			c.Set(UserEmailKey, email)
		}
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid - check JWT secret"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token must use HS256 algorithm"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	}
	return err.Error()
}
