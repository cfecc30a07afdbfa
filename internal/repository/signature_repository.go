package repository

import (
	"context"
	"database/sql"
)

// SignatureRepo appends representative decisions to the
// assinaturas_representante table.  One row per assinar call,
// append-only.
type SignatureRepo struct {
	db *sql.DB
}

// NewSignatureRepo returns a new SignatureRepo bound to the given database.
func NewSignatureRepo(db *sql.DB) *SignatureRepo { return &SignatureRepo{db: db} }

// Insert records one decision.  acao carries the resulting status
// (APROVADA or REPROVADA); motivoRecusa is only set on rejections.
func (r *SignatureRepo) Insert(ctx context.Context, requisicaoID, representanteID uint64, acao string, motivoRecusa *string) error {
	const q = `INSERT INTO assinaturas_representante
				 (requisicao_id, representante_id, acao, motivo_recusa)
			   VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, requisicaoID, representanteID, acao, motivoRecusa)
	return err
}
