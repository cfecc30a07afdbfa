package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prefborba/requisicoes-api/internal/model"
)

// RequisitionRepo provides data access to the requisicoes table.
// Requisitions are created with generated public identifiers and then
// mutated only through status updates; rows are never deleted here.
// All timestamp fields are assumed to be stored in UTC.
type RequisitionRepo struct {
	db *sql.DB
}

// NewRequisitionRepo returns a new RequisitionRepo bound to the given database.
func NewRequisitionRepo(db *sql.DB) *RequisitionRepo { return &RequisitionRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// with other repositories.
func (r *RequisitionRepo) DB() *sql.DB { return r.db }

// isDuplicateKey reports whether err is a MySQL unique-constraint
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// ExistsWithValue reports whether any requisition already holds the
// given value in the named identifier column.  Only the two generated
// identifier columns are accepted; anything else is rejected so that
// column names never come from user input.
func (r *RequisitionRepo) ExistsWithValue(ctx context.Context, column, value string) (bool, error) {
	var q string
	switch column {
	case "codigo_publico":
		q = `SELECT id FROM requisicoes WHERE codigo_publico = ? LIMIT 1`
	case "numero_formatado":
		q = `SELECT id FROM requisicoes WHERE numero_formatado = ? LIMIT 1`
	default:
		return false, errors.New("repository: unknown identifier column " + column)
	}
	var id uint64
	err := r.db.QueryRowContext(ctx, q, value).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new requisition and populates the generated ID on
// the provided model.  The status must already be set by the caller
// (PENDENTE on creation).  A unique-key violation on codigo_publico or
// numero_formatado is mapped to ErrDuplicate so the caller can retry
// with freshly generated identifiers.
func (r *RequisitionRepo) Create(ctx context.Context, req *model.Requisition) error {
	const q = `INSERT INTO requisicoes (
				 codigo_publico, numero_formatado, emissor_id,
				 passageiro_nome, passageiro_cpf, passageiro_matricula,
				 setor_id, origem, destino, data_ida, data_volta,
				 horario_embarque, justificativa, observacoes, status
			   ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		req.CodigoPublico, req.NumeroFormatado, req.EmissorID,
		req.PassageiroNome, req.PassageiroCPF, req.PassageiroMatricula,
		req.SetorID, req.Origem, req.Destino, req.DataIda, req.DataVolta,
		req.HorarioEmbarque, req.Justificativa, req.Observacoes, req.Status,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return nil
}

// GetLifecycle returns the current status and public code of a
// requisition.  It is the read half of every status transition.  When
// the id matches no row, ErrNotFound is returned.
func (r *RequisitionRepo) GetLifecycle(ctx context.Context, id uint64) (status, codigoPublico string, err error) {
	const q = `SELECT status, codigo_publico FROM requisicoes WHERE id = ? LIMIT 1`
	err = r.db.QueryRowContext(ctx, q, id).Scan(&status, &codigoPublico)
	if err == sql.ErrNoRows {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	return status, codigoPublico, nil
}

// UpdateStatus sets a requisition's status and bumps updated_at.  It
// does not verify the previous status; transition decisions belong to
// the handlers.
func (r *RequisitionRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE requisicoes SET status = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, status, id)
	return err
}

// RequisitionRow is the JSON shape returned by the listing endpoints.
// It carries every requisicoes column plus the denormalized issuer and
// sector names so front-office panels need a single request.
type RequisitionRow struct {
	ID                  uint64    `json:"id"`
	CodigoPublico       string    `json:"codigo_publico"`
	NumeroFormatado     *string   `json:"numero_formatado"`
	EmissorID           uint64    `json:"emissor_id"`
	PassageiroNome      string    `json:"passageiro_nome"`
	PassageiroCPF       *string   `json:"passageiro_cpf"`
	PassageiroMatricula *string   `json:"passageiro_matricula"`
	SetorID             *uint64   `json:"setor_id"`
	Origem              string    `json:"origem"`
	Destino             string    `json:"destino"`
	DataIda             string    `json:"data_ida"`
	DataVolta           *string   `json:"data_volta"`
	HorarioEmbarque     *string   `json:"horario_embarque"`
	Justificativa       *string   `json:"justificativa"`
	Observacoes         *string   `json:"observacoes"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	EmissorNome         *string   `json:"emissor_nome"`
	EmissorCPF          *string   `json:"emissor_cpf"`
	SetorNome           *string   `json:"setor_nome"`
}

// RequisitionDetail extends RequisitionRow with the "current
// representative": the most recent user whose logged transition landed
// the requisition on APROVADA or AUTORIZADA.  Both fields are null
// while the requisition is still pending.
type RequisitionDetail struct {
	RequisitionRow
	RepresentanteNome *string `json:"representante_nome"`
	RepresentanteCPF  *string `json:"representante_cpf"`
}

// ListFilter restricts List.  All predicates are conjunctive and any
// nil field is unconstrained.  Date bounds apply to data_ida.
type ListFilter struct {
	Status    *string
	DataIni   *string
	DataFim   *string
	EmissorID *uint64
	// Ascending orders by created_at ASC (the pending queue); the
	// default is newest first.
	Ascending bool
}

const requisitionColumns = `r.id, r.codigo_publico, r.numero_formatado, r.emissor_id,
	   r.passageiro_nome, r.passageiro_cpf, r.passageiro_matricula, r.setor_id,
	   r.origem, r.destino, r.data_ida, r.data_volta, r.horario_embarque,
	   r.justificativa, r.observacoes, r.status, r.created_at, r.updated_at,
	   u.nome, u.cpf, s.nome`

// scanRow reads one joined requisition row from any *sql.Row / *sql.Rows
// scanner.
func scanRow(scan func(dest ...any) error) (RequisitionRow, error) {
	var row RequisitionRow
	var numero, pcpf, matricula, volta, horario, justificativa, obs sql.NullString
	var setorID sql.NullInt64
	var emissorNome, emissorCPF, setorNome sql.NullString
	err := scan(
		&row.ID, &row.CodigoPublico, &numero, &row.EmissorID,
		&row.PassageiroNome, &pcpf, &matricula, &setorID,
		&row.Origem, &row.Destino, &row.DataIda, &volta, &horario,
		&justificativa, &obs, &row.Status, &row.CreatedAt, &row.UpdatedAt,
		&emissorNome, &emissorCPF, &setorNome,
	)
	if err != nil {
		return row, err
	}
	row.NumeroFormatado = nullableStr(numero)
	row.PassageiroCPF = nullableStr(pcpf)
	row.PassageiroMatricula = nullableStr(matricula)
	row.DataVolta = nullableStr(volta)
	row.HorarioEmbarque = nullableStr(horario)
	row.Justificativa = nullableStr(justificativa)
	row.Observacoes = nullableStr(obs)
	row.EmissorNome = nullableStr(emissorNome)
	row.EmissorCPF = nullableStr(emissorCPF)
	row.SetorNome = nullableStr(setorNome)
	if setorID.Valid {
		v := uint64(setorID.Int64)
		row.SetorID = &v
	}
	return row, nil
}

func nullableStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// List returns requisitions matching the filter, joined with issuer
// and sector names.  When no row matches, an empty slice is returned.
func (r *RequisitionRepo) List(ctx context.Context, f ListFilter) ([]RequisitionRow, error) {
	q := `SELECT ` + requisitionColumns + `
		  FROM requisicoes r
		  LEFT JOIN usuarios u ON u.id = r.emissor_id
		  LEFT JOIN setores  s ON s.id = r.setor_id
		  WHERE 1=1`
	args := make([]any, 0, 4)
	if f.Status != nil {
		q += " AND r.status = ?"
		args = append(args, *f.Status)
	}
	if f.DataIni != nil {
		q += " AND r.data_ida >= ?"
		args = append(args, *f.DataIni)
	}
	if f.DataFim != nil {
		q += " AND r.data_ida <= ?"
		args = append(args, *f.DataFim)
	}
	if f.EmissorID != nil {
		q += " AND r.emissor_id = ?"
		args = append(args, *f.EmissorID)
	}
	if f.Ascending {
		q += " ORDER BY r.created_at ASC"
	} else {
		q += " ORDER BY r.created_at DESC"
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RequisitionRow, 0)
	for rows.Next() {
		row, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one requisition with its denormalized issuer/sector
// names and the derived current-representative fields.  ErrNotFound is
// returned when the id matches no row; the representative fields stay
// null until some transition landed on APROVADA or AUTORIZADA.
func (r *RequisitionRepo) GetByID(ctx context.Context, id uint64) (*RequisitionDetail, error) {
	q := `SELECT ` + requisitionColumns + `
		  FROM requisicoes r
		  LEFT JOIN usuarios u ON u.id = r.emissor_id
		  LEFT JOIN setores  s ON s.id = r.setor_id
		  WHERE r.id = ?
		  LIMIT 1`
	row, err := scanRow(r.db.QueryRowContext(ctx, q, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	det := RequisitionDetail{RequisitionRow: row}
	// Most recent actor whose transition landed on APROVADA or
	// AUTORIZADA, resolved through the status log.
	const repQ = `SELECT u.nome, u.cpf
				  FROM requisicao_status_log l
				  JOIN usuarios u ON u.id = l.usuario_id
				  WHERE l.requisicao_id = ? AND l.status_novo IN (?, ?)
				  ORDER BY l.created_at DESC, l.id DESC
				  LIMIT 1`
	var nome string
	var cpf sql.NullString
	err = r.db.QueryRowContext(ctx, repQ, id, model.StatusAprovada, model.StatusAutorizada).
		Scan(&nome, &cpf)
	switch {
	case err == sql.ErrNoRows:
		// no representative yet
	case err != nil:
		return nil, err
	default:
		det.RepresentanteNome = &nome
		det.RepresentanteCPF = nullableStr(cpf)
	}
	return &det, nil
}
