package dto

import (
	"solispdv/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Agente PDV wire DTOs ───────────────────────────────────────────────────
// Payloads exchanged with the local agent. Field names follow the agent's
// camelCase JSON contract.

type AbrirCaixaDto struct {
	NumeroTerminal int             `json:"numeroTerminal"`
	OperadorNome   string          `json:"operadorNome"`
	ValorAbertura  decimal.Decimal `json:"valorAbertura"`
	Observacoes    *string         `json:"observacoes,omitempty"`
}

type FecharCaixaDto struct {
	CaixaID         uuid.UUID       `json:"caixaId"`
	ValorFechamento decimal.Decimal `json:"valorFechamento"`
	Observacoes     *string         `json:"observacoes,omitempty"`
}

// SyncResponse is the body of every agent sync trigger. A 200 with
// Sucesso=false is still a failed sync.
type SyncResponse struct {
	Sucesso  bool     `json:"sucesso"`
	Mensagem string   `json:"mensagem"`
	Total    *int     `json:"total,omitempty"`
	Erros    []string `json:"erros,omitempty"`
}

type CriarVendaItemDto struct {
	ProdutoID     *uuid.UUID      `json:"produtoId,omitempty"`
	Sequencia     int             `json:"sequencia"`
	CodigoProduto string          `json:"codigoProduto"`
	NomeProduto   string          `json:"nomeProduto"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	DescontoItem  decimal.Decimal `json:"descontoItem"`
	ValorTotal    decimal.Decimal `json:"valorTotal"`
}

type CriarVendaDto struct {
	CaixaID       *uuid.UUID          `json:"caixaId,omitempty"`
	ClienteCpf    *string             `json:"clienteCpf,omitempty"`
	ClienteNome   *string             `json:"clienteNome,omitempty"`
	ClienteEmail  *string             `json:"clienteEmail,omitempty"`
	ValorBruto    decimal.Decimal     `json:"valorBruto"`
	ValorDesconto decimal.Decimal     `json:"valorDesconto"`
	ValorLiquido  decimal.Decimal     `json:"valorLiquido"`
	Observacoes   *string             `json:"observacoes,omitempty"`
	Itens         []CriarVendaItemDto `json:"itens"`
}

type PagamentoDto struct {
	FormaPagamentoID uuid.UUID       `json:"formaPagamentoId"`
	Valor            decimal.Decimal `json:"valor"`
	ValorTroco       decimal.Decimal `json:"valorTroco"`
	Parcelas         *int            `json:"parcelas,omitempty"`
	NSU              *string         `json:"nsu,omitempty"`
	Autorizacao      *string         `json:"autorizacao,omitempty"`
	Bandeira         *string         `json:"bandeira,omitempty"`
}

type FinalizarVendaDto struct {
	Pagamentos []PagamentoDto `json:"pagamentos"`
}

// HealthCheck is the body of the agent's GET /health.
type HealthCheck struct {
	Status    string         `json:"status"` // healthy | unhealthy
	Timestamp model.Instante `json:"timestamp"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
}
