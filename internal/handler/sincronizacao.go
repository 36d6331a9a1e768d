package handler

import (
	"net/http"

	"solispdv/internal/dto"
	"solispdv/internal/model"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
)

type SincronizacaoHandler struct{ svc service.SyncService }

func NewSincronizacaoHandler(svc service.SyncService) *SincronizacaoHandler {
	return &SincronizacaoHandler{svc: svc}
}

// Status godoc
// @Summary Estado e última sincronização de cada recurso
// @Tags sincronizacao
// @Produce json
// @Success 200 {object} dto.SincronizacaoStatusResponse
// @Router /v1/sincronizacao [get]
func (h *SincronizacaoHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SincronizacaoStatusResponse{Recursos: h.svc.Status()})
}

// Recurso godoc
// @Summary Sincroniza um recurso
// @Tags sincronizacao
// @Produce json
// @Param tipo path string true "produtos | empresas | formas-pagamento | vendas"
// @Success 200 {object} model.ResultadoSincronizacao
// @Failure 409 {object} apierror.APIError "Sincronização já em andamento"
// @Failure 422 {object} apierror.APIError "Tipo inválido"
// @Failure 502 {object} apierror.APIError "Falha reportada pelo agente"
// @Failure 503 {object} apierror.APIError "API na nuvem indisponível"
// @Router /v1/sincronizacao/{tipo} [post]
func (h *SincronizacaoHandler) Recurso(c *gin.Context) {
	tipo := model.TipoRecurso(c.Param("tipo"))
	res, err := h.svc.SincronizarRecurso(c.Request.Context(), tipo)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Tudo godoc
// @Summary Sincroniza todos os recursos em sequência
// @Description Uma falha não interrompe os recursos seguintes; o resultado de cada um é retornado.
// @Tags sincronizacao
// @Produce json
// @Success 200 {object} dto.SincronizarTudoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/sincronizacao [post]
func (h *SincronizacaoHandler) Tudo(c *gin.Context) {
	res, err := h.svc.SincronizarTudo(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SincronizarTudoResponse{Resultados: res})
}
