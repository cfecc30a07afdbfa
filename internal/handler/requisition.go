package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prefborba/requisicoes-api/internal/model"
	"github.com/prefborba/requisicoes-api/internal/queue"
	"github.com/prefborba/requisicoes-api/internal/repository"
	"github.com/prefborba/requisicoes-api/internal/service"
)

// maxInsertRetries bounds how many times a create is retried after the
// database rejects the generated identifiers as duplicates.
const maxInsertRetries = 5

// RequisitionHandler covers creation and the read side of requisitions.
type RequisitionHandler struct {
	Reqs  *repository.RequisitionRepo
	Logs  *repository.StatusLogRepo
	Codes *service.CodeGenerator
}

// NewRequisitionHandler constructs a RequisitionHandler.
func NewRequisitionHandler(r *repository.RequisitionRepo, l *repository.StatusLogRepo, g *service.CodeGenerator) *RequisitionHandler {
	if r == nil || l == nil || g == nil {
		panic("nil dependency passed to NewRequisitionHandler")
	}
	return &RequisitionHandler{Reqs: r, Logs: l, Codes: g}
}

type createRequisitionReq struct {
	EmissorID           uint64  `json:"emissor_id"`
	PassageiroNome      string  `json:"passageiro_nome"`
	PassageiroCPF       *string `json:"passageiro_cpf"`
	PassageiroMatricula *string `json:"passageiro_matricula"`
	SetorID             *uint64 `json:"setor_id"`
	Origem              string  `json:"origem"`
	Destino             string  `json:"destino"`
	DataIda             string  `json:"data_ida"`
	DataVolta           *string `json:"data_volta"`
	HorarioEmbarque     *string `json:"horario_embarque"`
	Justificativa       *string `json:"justificativa"`
	Observacoes         *string `json:"observacoes"`
}

// Create handles POST /api/requisicoes.  The public code and formatted
// number are generated here and regenerated if the insert collides on a
// unique key.
func (h *RequisitionHandler) Create(c echo.Context) error {
	var req createRequisitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EmissorID == 0 || strings.TrimSpace(req.PassageiroNome) == "" ||
		strings.TrimSpace(req.Origem) == "" || strings.TrimSpace(req.Destino) == "" ||
		strings.TrimSpace(req.DataIda) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "emissor_id, passageiro_nome, origem, destino e data_ida são obrigatórios"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	r := &model.Requisition{
		EmissorID:           req.EmissorID,
		PassageiroNome:      req.PassageiroNome,
		PassageiroCPF:       req.PassageiroCPF,
		PassageiroMatricula: req.PassageiroMatricula,
		SetorID:             req.SetorID,
		Origem:              req.Origem,
		Destino:             req.Destino,
		DataIda:             req.DataIda,
		DataVolta:           req.DataVolta,
		HorarioEmbarque:     req.HorarioEmbarque,
		Justificativa:       req.Justificativa,
		Observacoes:         req.Observacoes,
		Status:              model.StatusPendente,
	}

	year := time.Now().Year()
	for attempt := 0; ; attempt++ {
		code, err := h.Codes.NewPublicCode(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao gerar identificadores"})
		}
		num, err := h.Codes.NewFormattedNumber(ctx, year)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao gerar identificadores"})
		}
		r.CodigoPublico = code
		r.NumeroFormatado = &num

		err = h.Reqs.Create(ctx, r)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt+1 >= maxInsertRetries {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao criar requisição"})
		}
	}

	obs := "Criação da requisição"
	if err := h.Logs.Insert(ctx, r.ID, nil, model.StatusPendente, req.EmissorID, &obs); err != nil {
		log.Printf("requisicao %d: falha ao registrar log de criação: %v", r.ID, err)
	}
	go func(ev queue.RequisitionStatusEvent) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = service.PublishStatusEvent(pubCtx, ev)
	}(queue.RequisitionStatusEvent{
		RequisicaoID:   r.ID,
		CodigoPublico:  r.CodigoPublico,
		StatusNovo:     model.StatusPendente,
		UsuarioID:      req.EmissorID,
		PassageiroNome: r.PassageiroNome,
		Origem:         r.Origem,
		Destino:        r.Destino,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"id":               r.ID,
		"codigo_publico":   r.CodigoPublico,
		"numero_formatado": r.NumeroFormatado,
		"status":           model.StatusPendente,
	})
}

// List handles GET /api/requisicoes with optional status, data_ini,
// data_fim and emissor_id filters, newest first.
func (h *RequisitionHandler) List(c echo.Context) error {
	var f repository.ListFilter
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		// the legacy panels send "TODOS" for an unfiltered listing
		if up := strings.ToUpper(s); up != "TODOS" {
			f.Status = &up
		}
	}
	if d := strings.TrimSpace(c.QueryParam("data_ini")); d != "" {
		f.DataIni = &d
	}
	if d := strings.TrimSpace(c.QueryParam("data_fim")); d != "" {
		f.DataFim = &d
	}
	if e := strings.TrimSpace(c.QueryParam("emissor_id")); e != "" {
		id, err := strconv.ParseUint(e, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid emissor_id"})
		}
		f.EmissorID = &id
	}
	return h.list(c, f)
}

// ListPendentes handles GET /api/requisicoes/pendentes: only PENDENTE
// rows, oldest first so the approval queue drains in order.
func (h *RequisitionHandler) ListPendentes(c echo.Context) error {
	status := model.StatusPendente
	return h.list(c, repository.ListFilter{Status: &status, Ascending: true})
}

// ListByEmissor handles GET /api/requisicoes/emissor/:emissorId.
func (h *RequisitionHandler) ListByEmissor(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("emissorId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid emissor id"})
	}
	return h.list(c, repository.ListFilter{EmissorID: &id})
}

func (h *RequisitionHandler) list(c echo.Context, f repository.ListFilter) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Reqs.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao listar requisições"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Historico handles GET /api/requisicoes/:id/log, returning the full
// transition history of one requisition, oldest entry first.
func (h *RequisitionHandler) Historico(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid requisition id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, _, err := h.Reqs.GetLifecycle(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "requisição não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao buscar requisição"})
	}
	entries, err := h.Logs.ListByRequisition(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao listar histórico"})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetByID handles GET /api/requisicoes/:id, returning the requisition
// with issuer and sector names plus the current representative when a
// qualifying status transition exists.
func (h *RequisitionHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid requisition id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	row, err := h.Reqs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "requisição não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro ao buscar requisição"})
	}
	return c.JSON(http.StatusOK, row)
}
