package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePerfil returns a middleware that enforces that the
// authenticated user carries one of the given perfis (emissor,
// representante, transportador, admin).  It assumes JWTAuth already
// stored the perfil claim in the context; requests with a missing or
// disallowed perfil are rejected with 403.
func RequirePerfil(perfis ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(perfis))
	for _, p := range perfis {
		allowed[p] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("perfil")
			perfil, ok := v.(string)
			if !ok || !allowed[perfil] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
