package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OwnerIDLocalKey holds the authenticated subject in Fiber's context locals.
const OwnerIDLocalKey = "owner_id"

// RequireAuth validates an HMAC-signed Bearer JWT and stores its subject under
// OwnerIDLocalKey. Failures end the request with fiber.ErrUnauthorized.
func RequireAuth(secret []byte) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return fiber.ErrUnauthorized
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || claims.Subject == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals(OwnerIDLocalKey, claims.Subject)
		return c.Next()
	}
}

// OwnerID returns the subject stored by RequireAuth, or "".
func OwnerID(c *fiber.Ctx) string {
	id, _ := c.Locals(OwnerIDLocalKey).(string)
	return id
}
