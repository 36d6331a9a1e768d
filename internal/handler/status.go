package handler

import (
	"net/http"

	"solispdv/internal/dto"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
)

// StatusHandler exposes the connectivity snapshot and the terminal selection.
type StatusHandler struct {
	conexao  service.ConexaoService
	terminal service.TerminalService
}

func NewStatusHandler(conexao service.ConexaoService, terminal service.TerminalService) *StatusHandler {
	return &StatusHandler{conexao: conexao, terminal: terminal}
}

// Status godoc
// @Summary Estado das conexões agente e API na nuvem
// @Description Retorna o último estado verificado; com atualizar=true consulta o agente agora.
// @Tags status
// @Produce json
// @Param atualizar query bool false "Consulta o agente antes de responder"
// @Success 200 {object} model.EstadoConexao
// @Router /v1/status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	if c.Query("atualizar") == "true" {
		c.JSON(http.StatusOK, h.conexao.Verificar(c.Request.Context()))
		return
	}
	c.JSON(http.StatusOK, h.conexao.Atual())
}

// Terminal godoc
// @Summary Número do terminal selecionado
// @Tags terminal
// @Produce json
// @Success 200 {object} dto.TerminalResponse
// @Router /v1/terminal [get]
func (h *StatusHandler) Terminal(c *gin.Context) {
	c.JSON(http.StatusOK, dto.TerminalResponse{NumeroTerminal: h.terminal.Numero()})
}

// DefinirTerminal godoc
// @Summary Seleciona o número do terminal
// @Tags terminal
// @Accept json
// @Produce json
// @Param body body dto.TerminalRequest true "Número do terminal"
// @Success 200 {object} dto.TerminalResponse
// @Failure 422 {object} apierror.Validation
// @Router /v1/terminal [put]
func (h *StatusHandler) DefinirTerminal(c *gin.Context) {
	var req dto.TerminalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.terminal.Definir(c.Request.Context(), req.NumeroTerminal); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TerminalResponse{NumeroTerminal: h.terminal.Numero()})
}
