package repository

import (
	"context"
	"database/sql"

	"github.com/prefborba/requisicoes-api/internal/model"
)

// ValidationRepo appends carrier validations to the
// validacoes_transportador table.  Append-only.
type ValidationRepo struct {
	db *sql.DB
}

// NewValidationRepo returns a new ValidationRepo bound to the given database.
func NewValidationRepo(db *sql.DB) *ValidationRepo { return &ValidationRepo{db: db} }

// Insert records one validation.  The TipoValidacao default
// ("EMBARQUE") is applied by the handler before calling here so the
// stored row always carries an explicit type.
func (r *ValidationRepo) Insert(ctx context.Context, v *model.Validation) error {
	const q = `INSERT INTO validacoes_transportador
				 (requisicao_id, transportador_id, tipo_validacao, codigo_lido, local_validacao, observacao)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		v.RequisicaoID, v.TransportadorID, v.TipoValidacao, v.CodigoLido, v.LocalValidacao, v.Observacao)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}
