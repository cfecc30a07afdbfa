package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prefborba/requisicoes-api/internal/config"
	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/utils"
)

// AuthHandler bundles dependencies for the login endpoint.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

type loginReq struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// loginUser is the user payload the front-ends expect: the perfil is
// exposed lowercased under the legacy "tipo" key.
type loginUser struct {
	ID      uint64  `json:"id"`
	Nome    string  `json:"nome"`
	Login   string  `json:"login"`
	Tipo    string  `json:"tipo"`
	SetorID *uint64 `json:"setor_id"`
}

type loginResp struct {
	User  loginUser `json:"user"`
	Token string    `json:"token"`
}

// Login verifies a credential pair against the stored bcrypt hash and
// returns the user together with a signed access token.  Invalid
// credentials and unknown or inactive logins are indistinguishable to
// the caller (both 401).
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "informe login e senha"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "usuário ou senha inválidos"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.SenhaHash, req.Senha) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "usuário ou senha inválidos"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Perfil, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		User: loginUser{
			ID:      u.ID,
			Nome:    u.Nome,
			Login:   u.Login,
			Tipo:    strings.ToLower(u.Perfil),
			SetorID: u.SetorID,
		},
		Token: access.Token,
	})
}
