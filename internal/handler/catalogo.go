package handler

import (
	"net/http"

	"solispdv/internal/apierror"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// FormasPagamento godoc
// @Summary Lista as formas de pagamento ativas
// @Tags catalogo
// @Produce json
// @Success 200 {array} model.FormaPagamento
// @Failure 503 {object} apierror.APIError
// @Router /v1/formas-pagamento [get]
func (h *CatalogoHandler) FormasPagamento(c *gin.Context) {
	formas, err := h.svc.FormasPagamento(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, formas)
}

// Empresa godoc
// @Summary Retorna o perfil da empresa sincronizado no agente
// @Tags catalogo
// @Produce json
// @Success 200 {object} model.Empresa
// @Failure 404 {object} apierror.APIError "Empresa ainda não sincronizada"
// @Router /v1/empresa [get]
func (h *CatalogoHandler) Empresa(c *gin.Context) {
	empresa, err := h.svc.Empresa(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	if empresa == nil {
		c.JSON(http.StatusNotFound, apierror.New("Empresa ainda não sincronizada"))
		return
	}
	c.JSON(http.StatusOK, empresa)
}
