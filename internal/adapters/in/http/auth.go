package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"radiology/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

var ErrMissingBearerToken = errors.New("missing bearer token")

// Claims is the token payload. The subject carries the actor UUID.
type Claims struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// TokenValidator verifies HMAC-signed bearer tokens and turns them into actors.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) (*TokenValidator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenValidator{secret: []byte(secret)}, nil
}

// Actor validates the token and returns the actor it names.
func (v *TokenValidator) Actor(tokenString string) (kernel.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return kernel.Actor{}, errors.New("invalid token")
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("invalid subject: %w", err)
	}
	caps := make([]kernel.Capability, 0, len(claims.Capabilities))
	for _, c := range claims.Capabilities {
		caps = append(caps, kernel.Capability(c))
	}
	return kernel.NewActor(id, claims.Name, caps...)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resulting actor on the echo context.
func Authenticate(v *TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrMissingBearerToken.Error())
			}

			actor, err := v.Actor(strings.TrimSpace(raw))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorContextKey).(kernel.Actor)
	return actor
}
