package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stylehub/internal/auth"
)

// IdentityJWT returns an Echo middleware that verifies the identity
// provider's Bearer token (HS256, signed with secret) and stores the
// asserted *auth.Identity in the context. Requests without a valid token
// are answered with 401.
func IdentityJWT(secret string) echo.MiddlewareFunc {
	return identityJWT(secret, false)
}

// OptionalIdentityJWT is IdentityJWT for public routes: a request without
// an Authorization header passes through anonymously, but a bad token is
// still rejected.
func OptionalIdentityJWT(secret string) echo.MiddlewareFunc {
	return identityJWT(secret, true)
}

func identityJWT(secret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" && optional {
				return next(c)
			}
			if !strings.HasPrefix(header, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}

			sub, _ := claims.GetSubject()
			if strings.TrimSpace(sub) == "" {
				return unauthorized(c, "invalid claims")
			}
			id := &auth.Identity{Subject: sub}
			id.Email, _ = claims["email"].(string)
			id.Name, _ = claims["name"].(string)

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated", "message": msg})
}
