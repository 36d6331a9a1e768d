package handler

import (
	"net/http"

	"solispdv/internal/dto"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
)

type ProdutosHandler struct{ svc service.ProdutoService }

func NewProdutosHandler(svc service.ProdutoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc}
}

// Listar godoc
// @Summary Lista produtos paginados
// @Tags produtos
// @Produce json
// @Param skip query int false "Deslocamento" default(0)
// @Param take query int false "Tamanho da página (1..100)" default(50)
// @Success 200 {array} model.Produto
// @Failure 503 {object} apierror.APIError
// @Router /v1/produtos [get]
func (h *ProdutosHandler) Listar(c *gin.Context) {
	var f dto.ProdutoFilter
	if !bindQuery(c, &f) {
		return
	}
	produtos, err := h.svc.Listar(c.Request.Context(), f.Skip, f.Take)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, produtos)
}

// Buscar godoc
// @Summary Busca produtos por nome ou código
// @Tags produtos
// @Produce json
// @Param termo query string true "Mínimo 3 caracteres"
// @Success 200 {array} model.Produto
// @Failure 422 {object} apierror.APIError
// @Router /v1/produtos/buscar [get]
func (h *ProdutosHandler) Buscar(c *gin.Context) {
	var f dto.BuscarProdutoFilter
	if !bindQuery(c, &f) {
		return
	}
	produtos, err := h.svc.Buscar(c.Request.Context(), f.Termo)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, produtos)
}

// PorCodigoBarras godoc
// @Summary Consulta de preço pelo código de barras
// @Tags produtos
// @Produce json
// @Param codigo path string true "Código de barras"
// @Success 200 {object} model.Produto
// @Failure 404 {object} apierror.APIError
// @Router /v1/produtos/codigo-barras/{codigo} [get]
func (h *ProdutosHandler) PorCodigoBarras(c *gin.Context) {
	produto, err := h.svc.BuscarPorCodigoBarras(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, produto)
}

// LimparCache godoc
// @Summary Descarta o cache local de produtos
// @Tags produtos
// @Success 204
// @Router /v1/produtos/cache [delete]
func (h *ProdutosHandler) LimparCache(c *gin.Context) {
	h.svc.LimparCache(c.Request.Context())
	c.Status(http.StatusNoContent)
}
