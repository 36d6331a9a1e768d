package handler

import (
	"net/http"

	"solispdv/internal/dto"
	"solispdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CarrinhoHandler serves the in-progress sale of the selected terminal.
type CarrinhoHandler struct {
	svc      service.CarrinhoService
	terminal service.TerminalService
}

func NewCarrinhoHandler(svc service.CarrinhoService, terminal service.TerminalService) *CarrinhoHandler {
	return &CarrinhoHandler{svc: svc, terminal: terminal}
}

// Obter godoc
// @Summary Retorna o carrinho atual com os totais
// @Tags carrinho
// @Produce json
// @Success 200 {object} dto.CarrinhoResponse
// @Router /v1/carrinho [get]
func (h *CarrinhoHandler) Obter(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NovoCarrinhoResponse(h.svc.Obter(h.terminal.Numero())))
}

// Adicionar godoc
// @Summary Adiciona um item pelo código de barras
// @Tags carrinho
// @Accept json
// @Produce json
// @Param body body dto.AdicionarItemRequest true "Código de barras e quantidade (padrão 1)"
// @Success 201 {object} dto.CarrinhoResponse
// @Failure 404 {object} apierror.APIError "Produto não encontrado"
// @Failure 412 {object} apierror.APIError "Nenhum caixa aberto"
// @Router /v1/carrinho/itens [post]
func (h *CarrinhoHandler) Adicionar(c *gin.Context) {
	var req dto.AdicionarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	qtd := decimal.NewFromInt(1)
	if req.Quantidade != nil {
		qtd = *req.Quantidade
	}
	carr, err := h.svc.AdicionarPorCodigoBarras(c.Request.Context(), h.terminal.Numero(), req.CodigoBarras, qtd)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NovoCarrinhoResponse(carr))
}

// Remover godoc
// @Summary Remove um item; os itens seguintes são renumerados
// @Tags carrinho
// @Produce json
// @Param seq path int true "Sequência do item"
// @Success 200 {object} dto.CarrinhoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/carrinho/itens/{seq} [delete]
func (h *CarrinhoHandler) Remover(c *gin.Context) {
	seq, ok := paramSequencia(c)
	if !ok {
		return
	}
	carr, err := h.svc.Remover(h.terminal.Numero(), seq)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NovoCarrinhoResponse(carr))
}

// AtualizarQuantidade godoc
// @Summary Altera a quantidade de um item
// @Tags carrinho
// @Accept json
// @Produce json
// @Param seq path int true "Sequência do item"
// @Param body body dto.AtualizarQuantidadeRequest true "Nova quantidade"
// @Success 200 {object} dto.CarrinhoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/carrinho/itens/{seq}/quantidade [put]
func (h *CarrinhoHandler) AtualizarQuantidade(c *gin.Context) {
	seq, ok := paramSequencia(c)
	if !ok {
		return
	}
	var req dto.AtualizarQuantidadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	carr, err := h.svc.AtualizarQuantidade(h.terminal.Numero(), seq, req.Quantidade)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NovoCarrinhoResponse(carr))
}

// AplicarDesconto godoc
// @Summary Aplica desconto em valor a um item
// @Tags carrinho
// @Accept json
// @Produce json
// @Param seq path int true "Sequência do item"
// @Param body body dto.AplicarDescontoRequest true "Desconto"
// @Success 200 {object} dto.CarrinhoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError "Desconto maior que o subtotal"
// @Router /v1/carrinho/itens/{seq}/desconto [put]
func (h *CarrinhoHandler) AplicarDesconto(c *gin.Context) {
	seq, ok := paramSequencia(c)
	if !ok {
		return
	}
	var req dto.AplicarDescontoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	carr, err := h.svc.AplicarDesconto(h.terminal.Numero(), seq, *req.Desconto)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NovoCarrinhoResponse(carr))
}

// Cancelar godoc
// @Summary Cancela a venda em andamento
// @Tags carrinho
// @Produce json
// @Success 200 {object} dto.CarrinhoResponse
// @Router /v1/carrinho [delete]
func (h *CarrinhoHandler) Cancelar(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NovoCarrinhoResponse(h.svc.Cancelar(h.terminal.Numero())))
}

// Finalizar godoc
// @Summary Registra a venda no agente e limpa o carrinho
// @Tags carrinho
// @Accept json
// @Produce json
// @Param body body dto.FinalizarVendaRequest true "Pagamentos"
// @Success 201 {object} dto.VendaFinalizadaResponse
// @Failure 409 {object} apierror.APIError "Finalização em andamento"
// @Failure 412 {object} apierror.APIError "Nenhum caixa aberto"
// @Failure 422 {object} apierror.APIError "Pagamento insuficiente ou carrinho vazio"
// @Router /v1/carrinho/finalizar [post]
func (h *CarrinhoHandler) Finalizar(c *gin.Context) {
	var req dto.FinalizarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), h.terminal.Numero(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
