// Package queue defines message payloads exchanged over the message broker.
package queue

// RequisitionStatusEvent is published after every accepted status
// transition, including creation.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.  StatusAnterior is empty for the creation event.
type RequisitionStatusEvent struct {
	RequisicaoID   uint64 `json:"requisicao_id"`
	CodigoPublico  string `json:"codigo_publico"`
	StatusAnterior string `json:"status_anterior,omitempty"`
	StatusNovo     string `json:"status_novo"`
	UsuarioID      uint64 `json:"usuario_id"`
	PassageiroNome string `json:"passageiro_nome,omitempty"`
	Origem         string `json:"origem,omitempty"`
	Destino        string `json:"destino,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
