package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/service"
)

func newRequisitionHandler(db *sql.DB) *RequisitionHandler {
	reqs := repository.NewRequisitionRepo(db)
	return NewRequisitionHandler(reqs, repository.NewStatusLogRepo(db), service.NewCodeGenerator(reqs))
}

// expectFreeIdentifiers queues the two uniqueness probes the generator
// runs before an insert, both reporting the candidate as free.
func expectFreeIdentifiers(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM requisicoes WHERE codigo_publico = ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM requisicoes WHERE numero_formatado = ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
}

const createBody = `{
	"emissor_id": 5,
	"passageiro_nome": "Maria da Silva",
	"origem": "Borba",
	"destino": "Manaus",
	"data_ida": "2026-09-10"
}`

func TestCreateRequisition(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	expectFreeIdentifiers(mock)
	mock.ExpectExec("INSERT INTO requisicoes").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO requisicao_status_log").
		WithArgs(uint64(42), nil, "PENDENTE", uint64(5), "Criação da requisição").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/api/requisicoes", createBody)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID              uint64 `json:"id"`
		CodigoPublico   string `json:"codigo_publico"`
		NumeroFormatado string `json:"numero_formatado"`
		Status          string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.ID)
	assert.Len(t, resp.CodigoPublico, 10)
	assert.Regexp(t, `^\d{4,6}/\d{4}$`, resp.NumeroFormatado)
	assert.Equal(t, "PENDENTE", resp.Status)
}

func TestCreateRetriesOnDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	// the unique index wins a race the pre-check missed; the handler
	// regenerates both identifiers and retries the insert
	expectFreeIdentifiers(mock)
	mock.ExpectExec("INSERT INTO requisicoes").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'ABC123XYZ0' for key 'codigo_publico'"))
	expectFreeIdentifiers(mock)
	mock.ExpectExec("INSERT INTO requisicoes").
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectExec("INSERT INTO requisicao_status_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/api/requisicoes", createBody)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":43`)
}

func TestCreateSucceedsWhenLogInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	// the audit entry is best effort: once the requisition row is in,
	// a failing log insert must not fail the creation
	expectFreeIdentifiers(mock)
	mock.ExpectExec("INSERT INTO requisicoes").
		WillReturnResult(sqlmock.NewResult(44, 1))
	mock.ExpectExec("INSERT INTO requisicao_status_log").
		WillReturnError(errors.New("Error 1205: Lock wait timeout exceeded"))

	c, rec := newJSONContext(t, http.MethodPost, "/api/requisicoes", createBody)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":44`)
	assert.Contains(t, rec.Body.String(), `"PENDENTE"`)
}

func TestCreateMissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := newRequisitionHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/api/requisicoes",
		`{"emissor_id":5,"passageiro_nome":"Maria"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// requisitionRows builds one joined listing row in column order.
func requisitionRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "codigo_publico", "numero_formatado", "emissor_id",
		"passageiro_nome", "passageiro_cpf", "passageiro_matricula", "setor_id",
		"origem", "destino", "data_ida", "data_volta", "horario_embarque",
		"justificativa", "observacoes", "status", "created_at", "updated_at",
		"nome", "cpf", "setor_nome",
	}).AddRow(
		1, "ABC123XYZ0", "1234/2026", 5,
		"Maria da Silva", nil, nil, nil,
		"Borba", "Manaus", "2026-09-10", nil, nil,
		nil, nil, "PENDENTE", now, now,
		"João Emissor", nil, nil,
	)
}

func TestListWithStatusFilter(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND r.status = ?")).
		WithArgs("PENDENTE").
		WillReturnRows(requisitionRows())

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes?status=pendente", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"codigo_publico":"ABC123XYZ0"`)
}

func TestListStatusTodosIsUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	// no status predicate may reach the query
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY r.created_at DESC")).
		WillReturnRows(requisitionRows())

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes?status=TODOS", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"codigo_publico":"ABC123XYZ0"`)
}

func TestListPendentesOrdersAscending(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY r.created_at ASC")).
		WithArgs("PENDENTE").
		WillReturnRows(requisitionRows())

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes/pendentes", "")
	require.NoError(t, h.ListPendentes(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListByEmissor(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND r.emissor_id = ?")).
		WithArgs(uint64(5)).
		WillReturnRows(requisitionRows())

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes/emissor/5", "")
	c.SetParamNames("emissorId")
	c.SetParamValues("5")
	require.NoError(t, h.ListByEmissor(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetByIDWithRepresentative(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(requisitionRows())
	mock.ExpectQuery("FROM requisicao_status_log").
		WithArgs(uint64(1), "APROVADA", "AUTORIZADA").
		WillReturnRows(sqlmock.NewRows([]string{"nome", "cpf"}).AddRow("Ana Representante", "00011122233"))

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"representante_nome":"Ana Representante"`)
}

func TestHistorico(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	expectLifecycle(mock, 1, "AUTORIZADA", "ABC123XYZ0")
	mock.ExpectQuery("FROM requisicao_status_log").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "requisicao_id", "status_anterior", "status_novo", "usuario_id", "observacao", "created_at",
		}).
			AddRow(1, 1, nil, "PENDENTE", 5, "Criação da requisição", time.Now()).
			AddRow(2, 1, "PENDENTE", "AUTORIZADA", 3, "Autorização pelo representante", time.Now()))

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes/1/log", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Historico(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status_anterior":null`)
	assert.Contains(t, rec.Body.String(), `"status_novo":"AUTORIZADA"`)
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	h := newRequisitionHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(t, http.MethodGet, "/api/requisicoes/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
