package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefborba/requisicoes-api/internal/utils"
)

func runThrough(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, "admin", 15)
	require.NoError(t, err)

	rec, c := runThrough(JWTAuth("secret"), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, c.Get("usuario_id"))
	assert.Equal(t, "admin", c.Get("perfil"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runThrough(JWTAuth("secret"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other", 7, "admin", 15)
	require.NoError(t, err)

	rec, _ := runThrough(JWTAuth("secret"), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePerfil(t *testing.T) {
	e := echo.New()
	handler := RequirePerfil("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("perfil", "admin")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, c.Response().Status)

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("perfil", "emissor")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
