package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prefborba/requisicoes-api/internal/config"
	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/utils"
)

// UserHandler exposes the user directory CRUD.  Roles (perfil) are
// normalized to lowercase on the way in; passwords are hashed before
// they reach the repository.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	if u == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: u}
}

type userReq struct {
	Nome    string  `json:"nome"`
	Login   string  `json:"login"`
	Senha   string  `json:"senha"`
	Tipo    string  `json:"tipo"`
	CPF     *string `json:"cpf"`
	Barco   *string `json:"barco"`
	SetorID *uint64 `json:"setor_id"`
}

// List handles GET /api/usuarios.  Only active users are returned,
// optionally filtered by ?perfil=.
func (h *UserHandler) List(c echo.Context) error {
	var perfil *string
	if p := strings.TrimSpace(c.QueryParam("perfil")); p != "" {
		perfil = &p
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Users.List(ctx, perfil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao listar usuários"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Create handles POST /api/usuarios.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Nome == "" || req.Login == "" || req.Senha == "" || req.Tipo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome, login, senha e tipo são obrigatórios"})
	}
	perfil := strings.ToLower(strings.TrimSpace(req.Tipo))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Nome, req.Login, req.Senha, perfil, req.CPF, req.Barco, req.SetorID, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrLoginExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "já existe um usuário com esse login"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao criar usuário"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":       id,
		"nome":     req.Nome,
		"login":    req.Login,
		"perfil":   perfil,
		"cpf":      req.CPF,
		"barco":    req.Barco,
		"setor_id": req.SetorID,
	})
}

// Update handles PUT /api/usuarios/:id as a partial update: only the
// fields present in the body are changed, and the password is only
// rehashed when a non-empty senha is sent.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Nome == "" || strings.TrimSpace(req.Login) == "" || req.Tipo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome, login e tipo são obrigatórios"})
	}
	login := strings.TrimSpace(req.Login)
	perfil := strings.ToLower(strings.TrimSpace(req.Tipo))

	upd := repository.UserUpdate{
		Nome:    &req.Nome,
		Login:   &login,
		Perfil:  &perfil,
		CPF:     req.CPF,
		Barco:   req.Barco,
		SetorID: req.SetorID,
	}
	if strings.TrimSpace(req.Senha) != "" {
		hash, err := utils.HashPassword(req.Senha, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao atualizar usuário"})
		}
		upd.SenhaHash = &hash
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Update(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuário não encontrado"})
		case errors.Is(err, repository.ErrLoginExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "já existe um usuário com esse login"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao atualizar usuário"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "usuário atualizado com sucesso"})
}

// Delete handles DELETE /api/usuarios/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuário não encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao excluir usuário"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "usuário excluído com sucesso"})
}
