package handler

import (
	"net/http"

	"solispdv/internal/apierror"
	"solispdv/internal/dto"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct {
	svc      service.CaixaService
	terminal service.TerminalService
}

func NewCaixaHandler(svc service.CaixaService, terminal service.TerminalService) *CaixaHandler {
	return &CaixaHandler{svc: svc, terminal: terminal}
}

// Aberto godoc
// @Summary Consulta o caixa aberto do terminal selecionado
// @Tags caixa
// @Produce json
// @Success 200 {object} dto.CaixaAbertoResponse
// @Failure 503 {object} apierror.APIError "Agente inacessível"
// @Router /v1/caixa/aberto [get]
func (h *CaixaHandler) Aberto(c *gin.Context) {
	numero := h.terminal.Numero()
	consulta := h.svc.ConsultarAberto(c.Request.Context(), numero)
	if consulta.Situacao == service.CaixaInacessivel {
		responderErro(c, consulta.Err)
		return
	}
	c.JSON(http.StatusOK, dto.CaixaAbertoResponse{
		NumeroTerminal: numero,
		Aberto:         consulta.Situacao == service.CaixaEncontrado,
		Caixa:          consulta.Caixa,
	})
}

// Abrir godoc
// @Summary Abre o caixa no terminal selecionado
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} model.Caixa
// @Failure 409 {object} apierror.APIError "Caixa já aberto ou abertura em andamento"
// @Failure 422 {object} apierror.Validation
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	caixa, err := h.svc.Abrir(c.Request.Context(), h.terminal.Numero(), req.OperadorNome, req.ValorAbertura, req.Observacoes)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, caixa)
}

// Fechar godoc
// @Summary Fecha o caixa informando o valor contado
// @Description Sem caixaId, fecha o caixa aberto conhecido do terminal.
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.FecharCaixaRequest true "Dados de fechamento"
// @Success 200 {object} model.Caixa
// @Failure 412 {object} apierror.APIError "Nenhum caixa aberto"
// @Failure 422 {object} apierror.Validation
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var caixaID uuid.UUID
	if req.CaixaID != "" {
		caixaID = uuid.MustParse(req.CaixaID) // validated above
	} else {
		atual := h.svc.CaixaAtual(h.terminal.Numero())
		if atual == nil {
			responderErro(c, apierror.ErrCaixaNaoAberto)
			return
		}
		caixaID = atual.ID
	}

	caixa, err := h.svc.Fechar(c.Request.Context(), caixaID, req.ValorFechamento, req.Observacoes)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, caixa)
}

// PreviaFechamento godoc
// @Summary Calcula a diferença entre o esperado em dinheiro e o contado
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.PreviaFechamentoRequest true "Valor contado"
// @Success 200 {object} dto.PreviaFechamentoResponse
// @Failure 412 {object} apierror.APIError "Nenhum caixa aberto"
// @Failure 503 {object} apierror.APIError "Agente inacessível e nenhum caixa em cache"
// @Router /v1/caixa/previa-fechamento [post]
func (h *CaixaHandler) PreviaFechamento(c *gin.Context) {
	var req dto.PreviaFechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	previa, err := h.svc.PreviaFechamento(c.Request.Context(), h.terminal.Numero(), *req.ValorContado)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, previa)
}
