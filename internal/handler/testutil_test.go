package handler

import (
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/prefborba/requisicoes-api/internal/repository"
)

// newMockDB returns a sqlmock-backed handle plus the expectation
// recorder.  Cleanup closes the handle and asserts every expectation
// was consumed, so a test that forgets a write is caught.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// newJSONContext builds an Echo context carrying a JSON body and the
// recorder its handler will write to.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func newWorkflowHandler(db *sql.DB) *WorkflowHandler {
	return NewWorkflowHandler(
		repository.NewRequisitionRepo(db),
		repository.NewStatusLogRepo(db),
		repository.NewSignatureRepo(db),
		repository.NewValidationRepo(db),
	)
}

// expectLifecycle queues the status+code read every transition starts
// with.
func expectLifecycle(mock sqlmock.Sqlmock, id uint64, status, codigo string) {
	mock.ExpectQuery("SELECT status, codigo_publico FROM requisicoes").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status", "codigo_publico"}).AddRow(status, codigo))
}

func expectLifecycleMissing(mock sqlmock.Sqlmock, id uint64) {
	mock.ExpectQuery("SELECT status, codigo_publico FROM requisicoes").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
}
