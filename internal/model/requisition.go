package model

import "time"

// Requisition represents a river-transport travel requisition as stored
// in the `requisicoes` table.  A requisition is created by an issuer
// (emissor) on behalf of a passenger, carries two public identifiers
// (a random 10-character code and an optional human-facing sequential
// number) and moves through its lifecycle exclusively via status
// transitions.  Rows are never deleted by the API.
//
// Fields:
//  ID                  – primary key identifier.
//  CodigoPublico       – 10-char [A-Z0-9] code, globally unique, immutable.
//  NumeroFormatado     – "digits/year" display number, unique, nullable.
//  EmissorID           – user who created the requisition.
//  PassageiroNome      – passenger full name.
//  PassageiroCPF       – passenger document number (nullable).
//  PassageiroMatricula – passenger registration number (nullable).
//  SetorID             – issuing sector (nullable).
//  Origem              – departure harbour.
//  Destino             – arrival harbour.
//  DataIda             – departure date ("YYYY-MM-DD").
//  DataVolta           – optional return date.
//  HorarioEmbarque     – optional boarding time ("HH:MM:SS").
//  Justificativa       – reason for the trip (nullable).
//  Observacoes         – free-text notes (nullable).
//  Status              – current lifecycle status (see status.go).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Requisition struct {
	ID                  uint64     // requisicoes.id
	CodigoPublico       string     // requisicoes.codigo_publico
	NumeroFormatado     *string    // requisicoes.numero_formatado (nullable)
	EmissorID           uint64     // requisicoes.emissor_id
	PassageiroNome      string     // requisicoes.passageiro_nome
	PassageiroCPF       *string    // requisicoes.passageiro_cpf (nullable)
	PassageiroMatricula *string    // requisicoes.passageiro_matricula (nullable)
	SetorID             *uint64    // requisicoes.setor_id (nullable)
	Origem              string     // requisicoes.origem
	Destino             string     // requisicoes.destino
	DataIda             string     // requisicoes.data_ida
	DataVolta           *string    // requisicoes.data_volta (nullable)
	HorarioEmbarque     *string    // requisicoes.horario_embarque (nullable)
	Justificativa       *string    // requisicoes.justificativa (nullable)
	Observacoes         *string    // requisicoes.observacoes (nullable)
	Status              string     // requisicoes.status
	CreatedAt           time.Time  // requisicoes.created_at
	UpdatedAt           time.Time  // requisicoes.updated_at
}

// StatusLogEntry is one row of the append-only `requisicao_status_log`
// audit trail.  Exactly one entry is written per accepted transition,
// including the synthetic creation entry whose previous status is null.
// Entries are never updated or deleted and are read back ordered by
// creation time.
//
// Fields:
//  ID             – primary key identifier.
//  RequisicaoID   – requisition this entry belongs to.
//  StatusAnterior – status before the transition (null for creation).
//  StatusNovo     – status after the transition.
//  UsuarioID      – user who performed the transition.
//  Observacao     – optional free-text note.
//  CreatedAt      – when the transition happened.
type StatusLogEntry struct {
	ID             uint64    `json:"id"`              // requisicao_status_log.id
	RequisicaoID   uint64    `json:"requisicao_id"`   // requisicao_status_log.requisicao_id
	StatusAnterior *string   `json:"status_anterior"` // requisicao_status_log.status_anterior (nullable)
	StatusNovo     string    `json:"status_novo"`     // requisicao_status_log.status_novo
	UsuarioID      uint64    `json:"usuario_id"`      // requisicao_status_log.usuario_id
	Observacao     *string   `json:"observacao"`      // requisicao_status_log.observacao (nullable)
	CreatedAt      time.Time `json:"created_at"`      // requisicao_status_log.created_at
}

// Signature records one representative decision over a requisition in
// the `assinaturas_representante` table.  Append-only, one row per
// assinar call.
//
// Fields:
//  ID             – primary key identifier.
//  RequisicaoID   – requisition being decided on.
//  RepresentanteID – representative who signed.
//  Acao           – resulting status (APROVADA or REPROVADA).
//  MotivoRecusa   – rejection reason (nullable).
//  CreatedAt      – decision timestamp.
type Signature struct {
	ID              uint64    // assinaturas_representante.id
	RequisicaoID    uint64    // assinaturas_representante.requisicao_id
	RepresentanteID uint64    // assinaturas_representante.representante_id
	Acao            string    // assinaturas_representante.acao
	MotivoRecusa    *string   // assinaturas_representante.motivo_recusa (nullable)
	CreatedAt       time.Time // assinaturas_representante.created_at
}

// Validation records one carrier validation (boarding scan) in the
// `validacoes_transportador` table.  Append-only.
//
// Fields:
//  ID              – primary key identifier.
//  RequisicaoID    – requisition that was validated.
//  TransportadorID – carrier who validated.
//  TipoValidacao   – validation kind, defaults to "EMBARQUE".
//  CodigoLido      – the code scanned or typed at boarding.
//  LocalValidacao  – optional location of the validation.
//  Observacao      – optional free-text note.
//  CreatedAt       – validation timestamp.
type Validation struct {
	ID              uint64    // validacoes_transportador.id
	RequisicaoID    uint64    // validacoes_transportador.requisicao_id
	TransportadorID uint64    // validacoes_transportador.transportador_id
	TipoValidacao   string    // validacoes_transportador.tipo_validacao
	CodigoLido      string    // validacoes_transportador.codigo_lido
	LocalValidacao  *string   // validacoes_transportador.local_validacao (nullable)
	Observacao      *string   // validacoes_transportador.observacao (nullable)
	CreatedAt       time.Time // validacoes_transportador.created_at
}
