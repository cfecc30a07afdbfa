package repository

import (
	"context"
	"database/sql"

	"github.com/prefborba/requisicoes-api/internal/model"
)

// StatusLogRepo appends to and reads from the requisicao_status_log
// audit trail.  The table is append-only: there is no update or delete
// here on purpose.  Insert failures are expected to be swallowed by
// callers once the primary write has committed.
type StatusLogRepo struct {
	db *sql.DB
}

// NewStatusLogRepo returns a new StatusLogRepo bound to the given database.
func NewStatusLogRepo(db *sql.DB) *StatusLogRepo { return &StatusLogRepo{db: db} }

// Insert appends one transition entry.  statusAnterior is nil only for
// the synthetic creation entry (null -> PENDENTE).
func (r *StatusLogRepo) Insert(ctx context.Context, requisicaoID uint64, statusAnterior *string, statusNovo string, usuarioID uint64, observacao *string) error {
	const q = `INSERT INTO requisicao_status_log
				 (requisicao_id, status_anterior, status_novo, usuario_id, observacao)
			   VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, requisicaoID, statusAnterior, statusNovo, usuarioID, observacao)
	return err
}

// ListByRequisition returns all entries for one requisition ordered by
// creation time (oldest first), i.e. the transition history as it
// happened.
func (r *StatusLogRepo) ListByRequisition(ctx context.Context, requisicaoID uint64) ([]model.StatusLogEntry, error) {
	const q = `SELECT id, requisicao_id, status_anterior, status_novo, usuario_id, observacao, created_at
			   FROM requisicao_status_log
			   WHERE requisicao_id = ?
			   ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, requisicaoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.StatusLogEntry, 0)
	for rows.Next() {
		var e model.StatusLogEntry
		var anterior, obs sql.NullString
		if err := rows.Scan(&e.ID, &e.RequisicaoID, &anterior, &e.StatusNovo, &e.UsuarioID, &obs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.StatusAnterior = nullableStr(anterior)
		e.Observacao = nullableStr(obs)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
