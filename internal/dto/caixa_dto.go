package dto

import (
	"solispdv/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AbrirCaixaRequest opens a session on the selected terminal.
type AbrirCaixaRequest struct {
	OperadorNome  string           `json:"operadorNome"  validate:"required,max=120"`
	ValorAbertura *decimal.Decimal `json:"valorAbertura" validate:"required,min=0"`
	Observacoes   *string          `json:"observacoes"   validate:"omitempty,max=1000"`
}

type FecharCaixaRequest struct {
	CaixaID         string           `json:"caixaId"         validate:"omitempty,uuid"`
	ValorFechamento *decimal.Decimal `json:"valorFechamento" validate:"required,min=0"`
	Observacoes     *string          `json:"observacoes"     validate:"omitempty,max=1000"`
}

type PreviaFechamentoRequest struct {
	ValorContado *decimal.Decimal `json:"valorContado" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CaixaAbertoResponse answers GET /v1/caixa/aberto. Caixa is null when the
// terminal has no open session.
type CaixaAbertoResponse struct {
	NumeroTerminal int          `json:"numeroTerminal"`
	Aberto         bool         `json:"aberto"`
	Caixa          *model.Caixa `json:"caixa"`
}

type PreviaFechamentoResponse struct {
	CaixaID       string          `json:"caixaId"`
	ValorAbertura decimal.Decimal `json:"valorAbertura"`
	TotalDinheiro decimal.Decimal `json:"totalDinheiro"`
	ValorEsperado decimal.Decimal `json:"valorEsperado"`
	ValorContado  decimal.Decimal `json:"valorContado"`
	Diferenca     decimal.Decimal `json:"diferenca"`
	Situacao      string          `json:"situacao"` // confere | sobra | falta
	// Desatualizada: the agent was unreachable and the totals come from the
	// last cached copy of the session.
	Desatualizada bool `json:"desatualizada"`
}
