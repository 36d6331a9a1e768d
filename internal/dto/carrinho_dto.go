package dto

import (
	"solispdv/internal/carrinho"
	"solispdv/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AdicionarItemRequest struct {
	CodigoBarras string           `json:"codigoBarras" validate:"required,max=60"`
	Quantidade   *decimal.Decimal `json:"quantidade"   validate:"omitempty,gt=0"` // default 1
}

type AtualizarQuantidadeRequest struct {
	Quantidade decimal.Decimal `json:"quantidade" validate:"required,gt=0"`
}

type AplicarDescontoRequest struct {
	Desconto *decimal.Decimal `json:"desconto" validate:"required,min=0"`
}

type PagamentoRequest struct {
	FormaPagamentoID string          `json:"formaPagamentoId" validate:"required,uuid"`
	Valor            decimal.Decimal `json:"valor"            validate:"required,gt=0"`
	Parcelas         *int            `json:"parcelas"         validate:"omitempty,min=1,max=24"`
	NSU              *string         `json:"nsu"              validate:"omitempty,max=40"`
	Autorizacao      *string         `json:"autorizacao"      validate:"omitempty,max=40"`
	Bandeira         *string         `json:"bandeira"         validate:"omitempty,max=40"`
}

type FinalizarVendaRequest struct {
	Pagamentos []PagamentoRequest `json:"pagamentos" validate:"required,min=1,dive"`
	// ClienteCpf is printed on the coupon when informed.
	ClienteCpf  *string `json:"clienteCpf"  validate:"omitempty,numeric,len=11"`
	Observacoes *string `json:"observacoes" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CarrinhoResponse struct {
	Itens           []carrinho.Item `json:"itens"`
	ValorBruto      decimal.Decimal `json:"valorBruto"`
	ValorDesconto   decimal.Decimal `json:"valorDesconto"`
	ValorLiquido    decimal.Decimal `json:"valorLiquido"`
	QuantidadeItens decimal.Decimal `json:"quantidadeItens"`
}

// NovoCarrinhoResponse projects a cart snapshot with its derived totals.
func NovoCarrinhoResponse(c carrinho.Carrinho) CarrinhoResponse {
	return CarrinhoResponse{
		Itens:           c.Itens(),
		ValorBruto:      c.ValorBruto(),
		ValorDesconto:   c.ValorDesconto(),
		ValorLiquido:    c.ValorLiquido(),
		QuantidadeItens: c.QuantidadeItens(),
	}
}

type VendaFinalizadaResponse struct {
	Venda model.Venda     `json:"venda"`
	Troco decimal.Decimal `json:"troco"`
}
