package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de forma de pagamento known by the agent.
const (
	PagamentoDinheiro      = "DINHEIRO"
	PagamentoDebito        = "DEBITO"
	PagamentoCredito       = "CREDITO"
	PagamentoInstantaneo   = "PAGAMENTO_INSTANTANEO"
	PagamentoValeAlimentos = "VALE_ALIMENTACAO"
)

type FormaPagamento struct {
	ID             uuid.UUID        `json:"id"`
	Codigo         string           `json:"codigo"`
	Descricao      string           `json:"descricao"`
	Tipo           string           `json:"tipo"`
	Ativa          bool             `json:"ativa"`
	Ordem          int              `json:"ordem"`
	MaximoParcelas *int             `json:"maximoParcelas,omitempty"`
	TaxaJuros      *decimal.Decimal `json:"taxaJuros,omitempty"`
	PermiteTroco   bool             `json:"permiteTroco"`
	RequerTEF      bool             `json:"requerTEF"`
	Bandeira       string           `json:"bandeira,omitempty"`
}

type VendaItem struct {
	ID            uuid.UUID       `json:"id"`
	VendaID       uuid.UUID       `json:"vendaId"`
	ProdutoID     *uuid.UUID      `json:"produtoId,omitempty"`
	Sequencia     int             `json:"sequencia"`
	CodigoProduto string          `json:"codigoProduto"`
	NomeProduto   string          `json:"nomeProduto"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	DescontoItem  decimal.Decimal `json:"descontoItem"`
	ValorTotal    decimal.Decimal `json:"valorTotal"`
}

type VendaPagamento struct {
	ID               uuid.UUID       `json:"id"`
	VendaID          uuid.UUID       `json:"vendaId"`
	FormaPagamentoID uuid.UUID       `json:"formaPagamentoId"`
	Valor            decimal.Decimal `json:"valor"`
	ValorTroco       decimal.Decimal `json:"valorTroco"`
	Parcelas         *int            `json:"parcelas,omitempty"`
}

// Venda is the persisted sale record created by the agent from a cart.
type Venda struct {
	ID            uuid.UUID        `json:"id"`
	NumeroCupom   int64            `json:"numeroCupom"`
	CaixaID       *uuid.UUID       `json:"caixaId,omitempty"`
	ValorBruto    decimal.Decimal  `json:"valorBruto"`
	ValorDesconto decimal.Decimal  `json:"valorDesconto"`
	ValorLiquido  decimal.Decimal  `json:"valorLiquido"`
	Observacoes   *string          `json:"observacoes,omitempty"`
	Sincronizado  bool             `json:"sincronizado"`
	CreatedAt     Instante         `json:"createdAt"`
	Itens         []VendaItem      `json:"itens"`
	Pagamentos    []VendaPagamento `json:"pagamentos"`
}
