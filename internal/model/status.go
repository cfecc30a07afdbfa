package model

// Requisition lifecycle statuses as persisted in requisicoes.status.
// The values are the Portuguese strings used on the wire and in the
// database.  PENDENTE is the only initial status; UTILIZADA is terminal.
// No terminal-state lock is enforced on the representative transitions:
// a cancelled requisition can still be authorized afterwards.
const (
	StatusPendente   = "PENDENTE"   // initial state, awaiting a representative
	StatusAutorizada = "AUTORIZADA" // authorized by a representative (workflow A)
	StatusCancelada  = "CANCELADA"  // cancelled by a representative (workflow A)
	StatusAprovada   = "APROVADA"   // approved via assinar (workflow B)
	StatusReprovada  = "REPROVADA"  // rejected via assinar (workflow B)
	StatusUtilizada  = "UTILIZADA"  // validated by a carrier at boarding
)

// AcaoAprovar is the only assinar action that approves; every other
// value rejects.
const AcaoAprovar = "APROVAR"

// StatusForAcao maps a representative's assinar action to the resulting
// status.  The mapping is deliberately permissive: anything that is not
// exactly "APROVAR" rejects the requisition.
func StatusForAcao(acao string) string {
	if acao == AcaoAprovar {
		return StatusAprovada
	}
	return StatusReprovada
}
