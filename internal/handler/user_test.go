package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefborba/requisicoes-api/internal/repository"
)

func TestUserListWithPerfilFilter(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("AND LOWER(perfil) = LOWER(?)")).
		WithArgs("emissor").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "nome", "login", "perfil", "cpf", "barco", "setor_id", "ativo",
		}).AddRow(1, "Carlos Lima", "carlos", "emissor", nil, nil, 2, true))

	c, rec := newJSONContext(t, http.MethodGet, "/api/usuarios?perfil=emissor", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login":"carlos"`)
	assert.NotContains(t, rec.Body.String(), "senha")
}

func TestUserCreate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM usuarios WHERE LOWER(login) = LOWER(?)")).
		WithArgs("novo").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO usuarios").
		WillReturnResult(sqlmock.NewResult(11, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/api/usuarios",
		`{"nome":"Novo Usuário","login":"novo","senha":"s3nh4","tipo":"Emissor"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"perfil":"emissor"`)
}

func TestUserCreateDuplicateLogin(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM usuarios WHERE LOWER(login) = LOWER(?)")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	c, rec := newJSONContext(t, http.MethodPost, "/api/usuarios",
		`{"nome":"Ana","login":"ana","senha":"x","tipo":"emissor"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserCreateMissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	c, rec := newJSONContext(t, http.MethodPost, "/api/usuarios", `{"nome":"Ana"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectExec("UPDATE usuarios SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newJSONContext(t, http.MethodPut, "/api/usuarios/99",
		`{"nome":"Ana","login":"ana","tipo":"emissor"}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserDelete(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectExec("DELETE FROM usuarios").
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newJSONContext(t, http.MethodDelete, "/api/usuarios/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
