package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prefborba/requisicoes-api/internal/model"
	"github.com/prefborba/requisicoes-api/internal/queue"
	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/service"
)

// WorkflowHandler drives the requisition lifecycle: authorization and
// cancellation by the back office, signing by a representative and
// validation at boarding by a carrier.  Every accepted transition
// appends to the status log and publishes a best-effort queue event;
// neither may fail the request once the primary write committed.
type WorkflowHandler struct {
	Reqs        *repository.RequisitionRepo
	Logs        *repository.StatusLogRepo
	Signatures  *repository.SignatureRepo
	Validations *repository.ValidationRepo
}

// NewWorkflowHandler constructs a WorkflowHandler.
func NewWorkflowHandler(r *repository.RequisitionRepo, l *repository.StatusLogRepo, s *repository.SignatureRepo, v *repository.ValidationRepo) *WorkflowHandler {
	if r == nil || l == nil || s == nil || v == nil {
		panic("nil dependency passed to NewWorkflowHandler")
	}
	return &WorkflowHandler{Reqs: r, Logs: l, Signatures: s, Validations: v}
}

type transitionReq struct {
	UsuarioID  uint64  `json:"usuario_id"`
	Observacao *string `json:"observacao"`
}

// afterTransition appends the audit entry and publishes the queue
// event.  Both are best effort: failures are logged and never surfaced.
func (h *WorkflowHandler) afterTransition(ctx context.Context, id uint64, codigo, anterior, novo string, usuarioID uint64, observacao *string) {
	prev := anterior
	if err := h.Logs.Insert(ctx, id, &prev, novo, usuarioID, observacao); err != nil {
		log.Printf("requisicao %d: falha ao registrar log de status: %v", id, err)
	}
	go func(ev queue.RequisitionStatusEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.PublishStatusEvent(pubCtx, ev)
	}(queue.RequisitionStatusEvent{
		RequisicaoID:   id,
		CodigoPublico:  codigo,
		StatusAnterior: anterior,
		StatusNovo:     novo,
		UsuarioID:      usuarioID,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// Autorizar handles PUT /api/requisicoes/:id/autorizar.  A requisition
// already AUTORIZADA is reported as such without a second write or log
// entry.
func (h *WorkflowHandler) Autorizar(c echo.Context) error {
	return h.simpleTransition(c, model.StatusAutorizada,
		"Já estava autorizada.", "Autorização pelo representante", "Requisição autorizada com sucesso.")
}

// Cancelar handles PUT /api/requisicoes/:id/cancelar, idempotent in
// the same way as Autorizar.
func (h *WorkflowHandler) Cancelar(c echo.Context) error {
	return h.simpleTransition(c, model.StatusCancelada,
		"Já estava cancelada.", "Cancelamento pelo representante", "Requisição cancelada com sucesso.")
}

func (h *WorkflowHandler) simpleTransition(c echo.Context, target, alreadyMsg, defaultObs, okMsg string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid requisition id"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UsuarioID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "usuario_id é obrigatório"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, codigo, err := h.Reqs.GetLifecycle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "requisição não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao buscar requisição"})
	}
	if status == target {
		return c.JSON(http.StatusOK, echo.Map{"id": id, "status": target, "message": alreadyMsg})
	}
	if err := h.Reqs.UpdateStatus(ctx, id, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao atualizar requisição"})
	}
	obs := req.Observacao
	if obs == nil || *obs == "" {
		obs = &defaultObs
	}
	h.afterTransition(ctx, id, codigo, status, target, req.UsuarioID, obs)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": target, "message": okMsg})
}

type assinarReq struct {
	RepresentanteID uint64  `json:"representante_id"`
	Acao            string  `json:"acao"`
	MotivoRecusa    *string `json:"motivo_recusa"`
}

// Assinar handles POST /api/requisicoes/:id/assinar.  The action maps
// permissively: "APROVAR" approves, anything else rejects.  There is no
// idempotency check; every call writes a signature row and a log entry.
func (h *WorkflowHandler) Assinar(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid requisition id"})
	}
	var req assinarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RepresentanteID == 0 || req.Acao == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "representante_id e acao são obrigatórios"})
	}
	target := model.StatusForAcao(req.Acao)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, codigo, err := h.Reqs.GetLifecycle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "requisição não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao buscar requisição"})
	}
	if err := h.Reqs.UpdateStatus(ctx, id, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao atualizar requisição"})
	}
	if err := h.Signatures.Insert(ctx, id, req.RepresentanteID, target, req.MotivoRecusa); err != nil {
		log.Printf("requisicao %d: falha ao registrar assinatura: %v", id, err)
	}
	h.afterTransition(ctx, id, codigo, status, target, req.RepresentanteID, req.MotivoRecusa)
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": id, "status": target})
}

type validarReq struct {
	TransportadorID uint64  `json:"transportador_id"`
	CodigoLido      string  `json:"codigo_lido"`
	TipoValidacao   *string `json:"tipo_validacao"`
	LocalValidacao  *string `json:"local_validacao"`
	Observacao      *string `json:"observacao"`
}

// Validar handles POST /api/requisicoes/:id/validar.  The scanned code
// must match the requisition's public code; a mismatch is rejected
// before anything is written.
func (h *WorkflowHandler) Validar(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid requisition id"})
	}
	var req validarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TransportadorID == 0 || req.CodigoLido == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transportador_id e codigo_lido são obrigatórios"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, codigo, err := h.Reqs.GetLifecycle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "requisição não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao buscar requisição"})
	}
	if req.CodigoLido != codigo {
		return c.JSON(http.StatusConflict, echo.Map{"error": "código informado não confere com a requisição"})
	}

	tipo := "EMBARQUE"
	if req.TipoValidacao != nil && *req.TipoValidacao != "" {
		tipo = *req.TipoValidacao
	}
	v := &model.Validation{
		RequisicaoID:    id,
		TransportadorID: req.TransportadorID,
		TipoValidacao:   tipo,
		CodigoLido:      req.CodigoLido,
		LocalValidacao:  req.LocalValidacao,
		Observacao:      req.Observacao,
	}
	if err := h.Validations.Insert(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao registrar validação"})
	}
	if err := h.Reqs.UpdateStatus(ctx, id, model.StatusUtilizada); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao atualizar requisição"})
	}
	h.afterTransition(ctx, id, codigo, status, model.StatusUtilizada, req.TransportadorID, req.Observacao)
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": id, "status": model.StatusUtilizada})
}
