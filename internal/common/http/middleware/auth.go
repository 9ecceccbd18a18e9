package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/utils/contextkey"
	"probrowse/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	subjectContextKey = "auth_subject"
)

// AuthConfig holds JWT validation settings for authenticated routes.
type AuthConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// AuthMiddleware validates a bearer token and stores its subject in the
// request context. Routes behind it can read the subject via AuthSubject.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	secret := []byte(cfg.Secret)
	return func(c *gin.Context) {
		raw := extractBearerToken(c.GetHeader(authorizationHeader))
		if raw == "" {
			response.AbortWithErrorCode(c, pkgerrors.Unauthorized, "")
			return
		}
		subject, err := parseSubject(raw, secret, cfg.Issuer)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		c.Set(subjectContextKey, subject)
		ctx := context.WithValue(c.Request.Context(), contextkey.UserID, subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthSubject returns the authenticated token subject, if any.
func AuthSubject(c *gin.Context) (string, bool) {
	value, ok := c.Get(subjectContextKey)
	if !ok {
		return "", false
	}
	subject, ok := value.(string)
	return subject, ok && subject != ""
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

func parseSubject(raw string, secret []byte, issuer string) (string, error) {
	if len(secret) == 0 {
		return "", pkgerrors.New(pkgerrors.Unauthorized)
	}
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", pkgerrors.New(pkgerrors.Unauthorized).WithMessage("token expired")
		}
		return "", pkgerrors.New(pkgerrors.Unauthorized)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", pkgerrors.New(pkgerrors.Unauthorized)
	}
	if issuer != "" && claims.Issuer != issuer {
		return "", pkgerrors.New(pkgerrors.Unauthorized)
	}
	if claims.Subject == "" {
		return "", pkgerrors.New(pkgerrors.Unauthorized)
	}
	return claims.Subject, nil
}
